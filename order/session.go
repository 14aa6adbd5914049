package order

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
)

// DefaultTaxBasisPoints is 10% sales tax, expressed in basis points so the
// arithmetic stays in integers.
const DefaultTaxBasisPoints = 1000

// Session owns the in-progress cart for one cashier device and drives the
// checkout state machine from cart-building through payment confirmation.
// The cart has a single logical owner; the mutex only makes individual
// operations atomic with respect to each other. The submission call runs
// outside the lock, so mutating calls made while it is in flight are
// rejected rather than queued.
type Session struct {
	catalog   Catalog
	submitter Submitter
	publisher Publisher

	mu        sync.Mutex
	id        string
	storeID   string
	cashierID string
	taxBP     int64
	lines     []CartLine
	state     State
	intent    *PaymentIntent
	receipt   *ReceiptSummary
}

// NewSession creates an empty Building session for one cashier. Store and
// cashier identity are passed in explicitly rather than read from ambient
// process state.
func NewSession(storeID, cashierID string, catalog Catalog, submitter Submitter, publisher Publisher) *Session {
	return &Session{
		id:        uuid.New().String(),
		storeID:   storeID,
		cashierID: cashierID,
		taxBP:     DefaultTaxBasisPoints,
		catalog:   catalog,
		submitter: submitter,
		publisher: publisher,
		state:     StateBuilding,
	}
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) StoreID() string { return s.storeID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Lines returns a copy of the cart in insertion order.
func (s *Session) Lines() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linesLocked()
}

// Intent returns a copy of the payment intent, or nil outside a checkout.
func (s *Session) Intent() *PaymentIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.intent == nil {
		return nil
	}
	cp := *s.intent
	return &cp
}

// Receipt returns the receipt summary of a completed sale, or nil.
func (s *Session) Receipt() *ReceiptSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.receiptLocked()
}

// Totals computes subtotal, tax and total for the current cart. Subtotal
// and total are exact integer sums; only the tax figure is rounded,
// half-up.
func (s *Session) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalsLocked()
}

// Snapshot builds the current cart event without mutating anything.
func (s *Session) Snapshot() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AddLine adds one unit of the product to the cart, incrementing the
// existing line if the product is already present. The catalog is
// consulted for a point-in-time stock figure; on ErrStockExceeded the cart
// is left untouched.
func (s *Session) AddLine(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBuilding {
		return s.mutationStateError()
	}

	info, err := s.catalog.Lookup(ctx, s.storeID, productID)
	if err != nil {
		return fmt.Errorf("catalog lookup %s: %w", productID, err)
	}

	if i := s.lineIndex(productID); i >= 0 {
		if s.lines[i].Quantity+1 > info.Stock {
			return ErrStockExceeded
		}
		s.lines[i].Quantity++
	} else {
		if info.Stock < 1 {
			return ErrStockExceeded
		}
		s.lines = append(s.lines, CartLine{
			ProductID: info.ProductID,
			Name:      info.Name,
			UnitPrice: info.UnitPrice,
			Quantity:  1,
		})
	}

	s.publishLocked()
	return nil
}

// SetQuantity sets a line's quantity, clamped to [0, stock]. Zero removes
// the line. Absent product IDs are a no-op, not an error.
func (s *Session) SetQuantity(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBuilding {
		return s.mutationStateError()
	}

	i := s.lineIndex(productID)
	if i < 0 {
		return nil
	}

	info, err := s.catalog.Lookup(ctx, s.storeID, productID)
	if err != nil {
		return fmt.Errorf("catalog lookup %s: %w", productID, err)
	}

	if quantity < 0 {
		quantity = 0
	}
	if quantity > info.Stock {
		quantity = info.Stock
	}

	if quantity == 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	} else {
		s.lines[i].Quantity = quantity
	}

	s.publishLocked()
	return nil
}

// RemoveLine removes the product's line unconditionally; no-op if absent.
func (s *Session) RemoveLine(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBuilding {
		return s.mutationStateError()
	}

	i := s.lineIndex(productID)
	if i < 0 {
		return nil
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)

	s.publishLocked()
	return nil
}

// Clear empties the cart. Valid only while Building; idempotent.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBuilding {
		return s.mutationStateError()
	}
	s.lines = nil
	s.publishLocked()
	return nil
}

// BeginCheckout moves Building -> AwaitingPayment and snapshots the total
// into a fresh payment intent. The intent defaults to cash with the exact
// total tendered.
func (s *Session) BeginCheckout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateBuilding {
		return ErrInvalidState
	}
	if len(s.lines) == 0 {
		return ErrEmptyCart
	}

	total := s.totalsLocked().Total
	s.intent = &PaymentIntent{
		Method:         MethodCash,
		Total:          total,
		TenderedAmount: total,
	}
	s.state = StateAwaitingPayment

	s.publishLocked()
	return nil
}

// CancelCheckout abandons an AwaitingPayment checkout and returns to
// Building with the cart intact. No-op while already Building; an
// in-flight submission cannot be cancelled.
func (s *Session) CancelCheckout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateBuilding {
		return nil
	}
	if s.state != StateAwaitingPayment {
		return ErrInvalidState
	}

	s.intent = nil
	s.state = StateBuilding

	s.publishLocked()
	return nil
}

// SelectPaymentMethod replaces the intent's method and resets the tendered
// amount to the snapshotted total. For cash, the cashier may then raise it
// with SetTenderedAmount.
func (s *Session) SelectPaymentMethod(method PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingPayment {
		return ErrInvalidState
	}
	if _, err := ParseMethod(string(method)); err != nil {
		return err
	}

	s.intent.Method = method
	s.intent.TenderedAmount = s.intent.Total
	return nil
}

// SetTenderedAmount records the cash the customer handed over. Validation
// against the total happens at ConfirmPayment, not here.
func (s *Session) SetTenderedAmount(amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingPayment || s.intent.Method != MethodCash {
		return ErrInvalidState
	}

	s.intent.TenderedAmount = amount
	return nil
}

// ConfirmPayment validates the tendered amount, hands a snapshot of the
// sale to the submitter, and settles in Completed or Failed. From Failed
// the call is a retry: the cart and intent are exactly as they were before
// the failed attempt.
func (s *Session) ConfirmPayment(ctx context.Context) (*ReceiptSummary, error) {
	s.mu.Lock()

	if s.state != StateAwaitingPayment && s.state != StateFailed {
		s.mu.Unlock()
		return nil, ErrInvalidState
	}

	totals := s.totalsLocked()
	intent := *s.intent

	if intent.Method == MethodCash {
		if intent.TenderedAmount < totals.Total {
			s.mu.Unlock()
			return nil, ErrInsufficientPayment
		}
	} else {
		// Non-cash methods always tender the exact total.
		intent.TenderedAmount = totals.Total
	}

	sub := Submission{
		SessionID:      s.id,
		StoreID:        s.storeID,
		CashierID:      s.cashierID,
		Items:          make([]SubmissionItem, 0, len(s.lines)),
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Total:          totals.Total,
		PaymentMethod:  intent.Method,
		TenderedAmount: intent.TenderedAmount,
		ChangeAmount:   intent.ChangeAmount(),
	}
	for _, l := range s.lines {
		sub.Items = append(sub.Items, SubmissionItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}

	s.state = StateProcessing
	s.publishLocked()

	// The network call runs without the lock so concurrent cart calls are
	// rejected by the Processing state instead of blocking behind it.
	s.mu.Unlock()
	txID, err := s.submitter.Submit(ctx, sub)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		// Cart and intent stay untouched so the cashier can retry.
		s.state = StateFailed
		s.publishLocked()
		log.Printf("order: submission failed for session %s: %v", s.id, err)
		return nil, fmt.Errorf("submit transaction: %w", err)
	}

	s.receipt = &ReceiptSummary{
		TransactionID: txID,
		Total:         sub.Total,
		PaymentMethod: sub.PaymentMethod,
		ChangeAmount:  sub.ChangeAmount,
	}
	s.state = StateCompleted
	s.publishLocked()
	return s.receiptLocked(), nil
}

// AcknowledgeCompletion dismisses the Completed or Failed screen and
// resets to a brand-new empty Building session.
func (s *Session) AcknowledgeCompletion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsTerminal() {
		return ErrInvalidState
	}

	s.id = uuid.New().String()
	s.lines = nil
	s.intent = nil
	s.receipt = nil
	s.state = StateBuilding

	s.publishLocked()
	return nil
}

func (s *Session) linesLocked() []CartLine {
	out := make([]CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Session) totalsLocked() Totals {
	var t Totals
	for _, l := range s.lines {
		t.Subtotal += l.UnitPrice * int64(l.Quantity)
		t.TotalItems += l.Quantity
	}
	t.Tax = roundHalfUp(t.Subtotal*s.taxBP, 10000)
	t.Total = t.Subtotal + t.Tax
	return t
}

func (s *Session) receiptLocked() *ReceiptSummary {
	if s.receipt == nil {
		return nil
	}
	cp := *s.receipt
	return &cp
}

func (s *Session) snapshotLocked() Event {
	ev := Event{
		SessionID: s.id,
		StoreID:   s.storeID,
		CashierID: s.cashierID,
		State:     s.state,
		Lines:     s.linesLocked(),
		Totals:    s.totalsLocked(),
	}
	if s.state == StateCompleted {
		ev.Receipt = s.receiptLocked()
	}
	return ev
}

// roundHalfUp divides num by den rounding the half case up. Amounts are
// never negative here.
func roundHalfUp(num, den int64) int64 {
	return (num + den/2) / den
}

func (s *Session) lineIndex(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Session) mutationStateError() error {
	if s.state == StateProcessing {
		return ErrCheckoutInProgress
	}
	return ErrInvalidState
}

func (s *Session) publishLocked() {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishCart(s.snapshotLocked())
}
