package ledger

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidAmount     = errors.New("payment amount must be positive")
	ErrInvalidTransition = errors.New("status transition not allowed")
)
