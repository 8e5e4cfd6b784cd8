package payment

import (
	"coursedesk/internal/domain"
	"coursedesk/internal/modules/ledger"
)

type CreatePaymentRequest struct {
	BookingID int64   `json:"booking_id" binding:"required,gt=0"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	// PaymentDate accepts YYYY-MM-DD or RFC 3339.
	PaymentDate string `json:"payment_date" binding:"required"`
	Method      string `json:"method" binding:"max=64"`
	Note        string `json:"note"`
}

// PaymentResult is what the admin UI needs after a payment mutation: the
// payment itself and the booking's new balance.
type PaymentResult struct {
	Payment *domain.Payment `json:"payment"`
	Ledger  *ledger.Result  `json:"ledger"`
}

type ErrorResponse struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
