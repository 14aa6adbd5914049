package order

import "context"

// State is the checkout lifecycle position of a session.
type State string

const (
	StateBuilding        State = "building"
	StateAwaitingPayment State = "awaiting_payment"
	StateProcessing      State = "processing"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

func (s State) String() string { return string(s) }

// IsTerminal reports whether the session must be acknowledged before the
// cashier can start a new sale.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	MethodCash PaymentMethod = "cash"
	MethodQRIS PaymentMethod = "qris"
	MethodCard PaymentMethod = "card"
)

// ParseMethod validates a client-supplied payment method string.
func ParseMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodCash, MethodQRIS, MethodCard:
		return PaymentMethod(s), nil
	}
	return "", ErrUnknownPaymentMethod
}

// CartLine is one product's presence in the active cart. Name and
// UnitPrice are frozen at the moment the product is first added; later
// catalog price changes do not touch existing lines.
type CartLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// PaymentIntent records the chosen method and tendered amount while a
// checkout is underway. Total is the amount snapshotted at BeginCheckout.
type PaymentIntent struct {
	Method         PaymentMethod `json:"method"`
	Total          int64         `json:"total"`
	TenderedAmount int64         `json:"tenderedAmount"`
}

// ChangeAmount is what the cashier hands back. Only cash can produce change.
func (p PaymentIntent) ChangeAmount() int64 {
	if p.Method != MethodCash {
		return 0
	}
	if p.TenderedAmount <= p.Total {
		return 0
	}
	return p.TenderedAmount - p.Total
}

// Totals are the derived monetary figures for a cart.
type Totals struct {
	Subtotal   int64 `json:"subtotal"`
	Tax        int64 `json:"tax"`
	Total      int64 `json:"total"`
	TotalItems int   `json:"totalItems"`
}

// ProductInfo is the point-in-time catalog snapshot a session consults
// when mutating the cart.
type ProductInfo struct {
	ProductID string
	Name      string
	UnitPrice int64
	Stock     int
}

// Catalog resolves product identifiers to current stock and price.
type Catalog interface {
	Lookup(ctx context.Context, storeID, productID string) (ProductInfo, error)
}

// SubmissionItem mirrors a cart line for persistence.
type SubmissionItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPriceSnapshot"`
	Quantity  int    `json:"quantity"`
}

// Submission is the snapshot handed to the transaction collaborator when
// a payment is confirmed. Decrementing catalog stock is the collaborator's
// job; the session never writes stock itself.
type Submission struct {
	SessionID      string           `json:"sessionId"`
	StoreID        string           `json:"storeId"`
	CashierID      string           `json:"cashierId"`
	Items          []SubmissionItem `json:"items"`
	Subtotal       int64            `json:"subtotal"`
	Tax            int64            `json:"tax"`
	Total          int64            `json:"total"`
	PaymentMethod  PaymentMethod    `json:"paymentMethod"`
	TenderedAmount int64            `json:"tenderedAmount"`
	ChangeAmount   int64            `json:"changeAmount"`
}

// Submitter persists a finished sale and returns its transaction ID.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (string, error)
}

// ReceiptSummary is emitted once a sale completes.
type ReceiptSummary struct {
	TransactionID string        `json:"transactionId"`
	Total         int64         `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	ChangeAmount  int64         `json:"changeAmount"`
}

// Event is the cart snapshot published after every mutation and state
// transition, mirrored to the customer-facing display.
type Event struct {
	SessionID string          `json:"sessionId"`
	StoreID   string          `json:"storeId"`
	CashierID string          `json:"cashierId"`
	State     State           `json:"state"`
	Lines     []CartLine      `json:"lines"`
	Totals    Totals          `json:"totals"`
	Receipt   *ReceiptSummary `json:"receipt,omitempty"`
}

// Publisher fans cart events out to whoever is listening. Publishing must
// never block or fail the session; implementations are fire-and-forget.
type Publisher interface {
	PublishCart(event Event)
}
