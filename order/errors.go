package order

import "errors"

var (
	// Validation errors. These never change session state.
	ErrStockExceeded       = errors.New("requested quantity exceeds available stock")
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	ErrInsufficientPayment = errors.New("tendered amount is less than the total due")

	// State errors.
	ErrInvalidState       = errors.New("operation not valid in current session state")
	ErrCheckoutInProgress = errors.New("cart is locked while checkout is in progress")

	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)
