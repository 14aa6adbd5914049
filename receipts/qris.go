package receipts

import (
	"fmt"
	"net/http"

	"tamias/order"
	"tamias/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// QRISHandler serves payment QR codes for checkouts awaiting a QRIS
// payment.
type QRISHandler struct {
	registry *order.Registry
}

func NewQRISHandler(registry *order.Registry) *QRISHandler {
	return &QRISHandler{registry: registry}
}

// PaymentCode returns a PNG QR code encoding the amount due for the
// cashier's current checkout.
func (h *QRISHandler) PaymentCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cashierID := utils.GetEmployeeIDFromRequest(r)
	storeID := utils.GetStoreIDFromRequest(r)
	if cashierID == "" || storeID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	session := h.registry.Session(storeID, cashierID)
	if session.State() != order.StateAwaitingPayment {
		http.Error(w, "No checkout awaiting payment", http.StatusConflict)
		return
	}
	intent := session.Intent()
	if intent == nil || intent.Method != order.MethodQRIS {
		http.Error(w, "QRIS is not the selected payment method", http.StatusConflict)
		return
	}

	payload := signPayload(fmt.Sprintf("qris|%s|%s|%d", storeID, session.ID(), intent.Total))
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		return
	}
}
