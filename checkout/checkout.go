package checkout

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tamias/catalog"
	"tamias/order"
	"tamias/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler exposes one cashier's order session over HTTP. The session is
// resolved from the authenticated employee, so every device gets exactly
// one active cart.
type Handler struct {
	registry *order.Registry
}

func NewHandler(registry *order.Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) session(r *http.Request) (*order.Session, bool) {
	storeID := utils.GetStoreIDFromRequest(r)
	employeeID := utils.GetEmployeeIDFromRequest(r)
	if storeID == "" || employeeID == "" {
		return nil, false
	}
	return h.registry.Session(storeID, employeeID), true
}

// GetCart returns the live cart snapshot with derived totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s, ok := h.session(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, s.Snapshot())
}

// AddItem adds one unit of a product to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s, ok := h.session(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ProductID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "productId is required")
		return
	}

	if err := s.AddLine(r.Context(), input.ProductID); err != nil {
		writeSessionError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, s.Snapshot())
}

// UpdateItem sets a line's quantity; zero removes the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s, ok := h.session(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := s.SetQuantity(r.Context(), ps.ByName("productid"), input.Quantity); err != nil {
		writeSessionError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, s.Snapshot())
}

// RemoveItem deletes a line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s, ok := h.session(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := s.RemoveLine(ps.ByName("productid")); err != nil {
		writeSessionError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, s.Snapshot())
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s, ok := h.session(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := s.Clear(); err != nil {
		writeSessionError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, s.Snapshot())
}

// BeginCheckout locks the cart and opens the payment step.
func (h *Handler) BeginCheckout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s, ok := h.session(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := s.BeginCheckout(); err != nil {
		writeSessionError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, s.Snapshot())
}

// CancelCheckout dismisses the payment step and returns to cart-building.
func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s, ok := h.session(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := s.CancelCheckout(); err != nil {
		writeSessionError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, s.Snapshot())
}

// SelectPayment chooses cash, qris or card.
func (h *Handler) SelectPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s, ok := h.session(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Method string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	method, err := order.ParseMethod(input.Method)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown payment method")
		return
	}
	if err := s.SelectPaymentMethod(method); err != nil {
		writeSessionError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"intent": s.Intent()})
}

// SetTendered records the cash handed over by the customer.
func (h *Handler) SetTendered(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s, ok := h.session(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if err := s.SetTenderedAmount(input.Amount); err != nil {
		writeSessionError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"intent": s.Intent()})
}

// Confirm submits the sale. On backend failure the session parks in
// Failed and the same call can simply be repeated.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s, ok := h.session(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	receipt, err := s.ConfirmPayment(r.Context())
	if err != nil {
		if isValidationError(err) {
			writeSessionError(w, err)
			return
		}
		log.Printf("checkout: submission failed: %v", err)
		utils.RespondWithJSON(w, http.StatusBadGateway, utils.M{
			"error":     "Transaction could not be saved",
			"retryable": true,
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"receipt": receipt})
}

// Acknowledge dismisses the completed or failed screen and starts a
// fresh empty session.
func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s, ok := h.session(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := s.AcknowledgeCompletion(); err != nil {
		writeSessionError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, s.Snapshot())
}

// DropSession discards the cashier's session entirely, e.g. at the end
// of a shift.
func (h *Handler) DropSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	employeeID := utils.GetEmployeeIDFromRequest(r)
	if employeeID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.registry.Drop(employeeID)
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
}

func isValidationError(err error) bool {
	return errors.Is(err, order.ErrStockExceeded) ||
		errors.Is(err, order.ErrEmptyCart) ||
		errors.Is(err, order.ErrInsufficientPayment) ||
		errors.Is(err, order.ErrInvalidState) ||
		errors.Is(err, order.ErrCheckoutInProgress) ||
		errors.Is(err, order.ErrUnknownPaymentMethod)
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrStockExceeded):
		utils.RespondWithError(w, http.StatusConflict, "Not enough stock for that quantity")
	case errors.Is(err, order.ErrEmptyCart):
		utils.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
	case errors.Is(err, order.ErrInsufficientPayment):
		utils.RespondWithError(w, http.StatusBadRequest, "Tendered amount is less than the total")
	case errors.Is(err, order.ErrCheckoutInProgress):
		utils.RespondWithError(w, http.StatusConflict, "Cart is locked while payment is processing")
	case errors.Is(err, order.ErrInvalidState):
		utils.RespondWithError(w, http.StatusConflict, "Operation not allowed in the current checkout step")
	case errors.Is(err, order.ErrUnknownPaymentMethod):
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown payment method")
	case errors.Is(err, catalog.ErrProductNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Product not found")
	default:
		log.Printf("checkout: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal error")
	}
}
