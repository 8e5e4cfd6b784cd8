package payment

import (
	"context"

	"coursedesk/internal/domain"
	"coursedesk/internal/modules/ledger"
)

type paymentRepo interface {
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
}

type bookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// ledgerWriter records and removes payments together with the balance
// recompute of the parent booking.
type ledgerWriter interface {
	RecordPayment(ctx context.Context, p *domain.Payment) (*ledger.Result, error)
	DeletePayment(ctx context.Context, paymentID int64) (*domain.Payment, *ledger.Result, error)
}
