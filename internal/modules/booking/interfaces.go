package booking

import (
	"context"

	"coursedesk/internal/domain"
	"coursedesk/internal/modules/ledger"
	"coursedesk/internal/repository"
)

// BookingRepository defines the interface for booking operations
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, int64, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
}

type PaymentReader interface {
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// CourseCatalog resolves the course and course date a booking points at.
type CourseCatalog interface {
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
	GetDate(ctx context.Context, id int64) (*domain.CourseDate, error)
}

type PartnerReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Partner, error)
}

// Ledger is the part of the ledger service bookings depend on.
type Ledger interface {
	Recompute(ctx context.Context, bookingID int64) (*ledger.Result, error)
	UpdateAndRecompute(ctx context.Context, bookingID int64, fields map[string]any) (*ledger.Result, error)
	ChangeStatus(ctx context.Context, bookingID int64, to domain.BookingStatus, fields map[string]any, recompute bool) (*ledger.StatusChange, error)
	FillAmount(ctx context.Context, b *domain.Booking) error
	FillAmounts(ctx context.Context, rows []domain.Booking) ([]domain.Booking, error)
}
