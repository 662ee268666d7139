package order

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyOrderItems    = errors.New("cart is empty")
	ErrCheckoutValidation = errors.New("checkout validation failed")
	ErrInvoiceMismatch    = errors.New("invoice lines do not match order total")
)
