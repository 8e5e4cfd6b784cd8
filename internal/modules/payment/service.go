package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"coursedesk/internal/domain"
	"coursedesk/internal/modules/ledger"
	"coursedesk/internal/repository"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrInvalidDate     = errors.New("invalid payment date")
	ErrBookingNotFound = ledger.ErrBookingNotFound
	ErrPaymentNotFound = ledger.ErrPaymentNotFound
)

type Service struct {
	payments paymentRepo
	bookings bookingReader
	ledger   ledgerWriter
}

func NewService(payments paymentRepo, bookings bookingReader, ledger ledgerWriter) *Service {
	return &Service{payments: payments, bookings: bookings, ledger: ledger}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// CreatePayment records a receipt and returns the booking's new balance.
func (s *Service) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*PaymentResult, error) {
	if req.Amount <= 0 {
		return nil, ErrValidation
	}
	day, err := parseDate(req.PaymentDate)
	if err != nil {
		return nil, err
	}

	p := &domain.Payment{
		BookingID:   req.BookingID,
		PaymentDate: day,
		Amount:      req.Amount,
		Method:      strings.TrimSpace(req.Method),
		Note:        req.Note,
	}

	res, err := s.ledger.RecordPayment(ctx, p)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			return nil, ErrValidation
		}
		return nil, err
	}
	return &PaymentResult{Payment: p, Ledger: res}, nil
}

func (s *Service) ListPayments(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	out, err := s.payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Payment{}
	}
	return out, nil
}

func (s *Service) DeletePayment(ctx context.Context, id int64) (*PaymentResult, error) {
	p, res, err := s.ledger.DeletePayment(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Payment: p, Ledger: res}, nil
}

func (s *Service) Methods() []string {
	out := make([]string, len(domain.PaymentMethods))
	copy(out, domain.PaymentMethods)
	return out
}
