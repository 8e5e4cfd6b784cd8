// Package ledger keeps a booking's open balance (saldo), its paid total and
// its payment-driven status consistent with the payments recorded against it.
// Every write goes through one transaction that locks the booking row.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coursedesk/internal/domain"
	"coursedesk/internal/events"
	"coursedesk/internal/metrics"
	"coursedesk/internal/pkg/money"
	"coursedesk/internal/repository"
)

const (
	TriggerRecompute      = "recompute"
	TriggerPaymentCreated = "payment.recorded"
	TriggerPaymentDeleted = "payment.deleted"
	TriggerBookingUpdated = "booking.updated"
	TriggerBackfill       = "backfill"
)

// Result is the ledger state written for one booking. It is also the payload
// of the booking.ledger_updated event.
type Result struct {
	BookingID      int64                `json:"booking_id"`
	Amount         *float64             `json:"amount"`
	PaidTotal      float64              `json:"paid_total"`
	Saldo          float64              `json:"saldo"`
	Status         domain.BookingStatus `json:"status"`
	PreviousStatus domain.BookingStatus `json:"previous_status"`
	Trigger        string               `json:"trigger"`
}

func (r *Result) StatusChanged() bool {
	return r.Status != r.PreviousStatus
}

type Service struct {
	db        *gorm.DB
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(db *gorm.DB, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, publisher: publisher, logger: logger}
}

// Recompute recalculates saldo, paid total and status of one booking.
func (s *Service) Recompute(ctx context.Context, bookingID int64) (*Result, error) {
	var res *Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = recomputeTx(tx, bookingID, TriggerRecompute)
		return err
	})
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	s.afterCommit(ctx, res)
	return res, nil
}

// RecordPayment stores p and recomputes its booking atomically.
func (s *Service) RecordPayment(ctx context.Context, p *domain.Payment) (*Result, error) {
	p.Amount = money.Round2(p.Amount)
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var res *Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockBooking(tx, p.BookingID); err != nil {
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		var err error
		res, err = recomputeTx(tx, p.BookingID, TriggerPaymentCreated)
		return err
	})
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	metrics.IncPaymentRecorded()
	s.publish(ctx, events.KeyPaymentCreated, p)
	s.afterCommit(ctx, res)
	return res, nil
}

// DeletePayment removes a payment and recomputes the booking it belonged to.
func (s *Service) DeletePayment(ctx context.Context, paymentID int64) (*domain.Payment, *Result, error) {
	var (
		p   domain.Payment
		res *Result
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, paymentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if _, err := lockBooking(tx, p.BookingID); err != nil {
			return err
		}
		if err := tx.Delete(&domain.Payment{}, p.ID).Error; err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		var err error
		res, err = recomputeTx(tx, p.BookingID, TriggerPaymentDeleted)
		return err
	})
	if err != nil {
		s.recordFailure(err)
		return nil, nil, err
	}

	metrics.IncPaymentDeleted()
	s.publish(ctx, events.KeyPaymentDeleted, &p)
	s.afterCommit(ctx, res)
	return &p, res, nil
}

// UpdateAndRecompute applies a field update to a booking and recomputes it in
// the same transaction. Used when the gross amount changes.
func (s *Service) UpdateAndRecompute(ctx context.Context, bookingID int64, fields map[string]any) (*Result, error) {
	var res *Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockBooking(tx, bookingID); err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := tx.Model(&domain.Booking{}).Where("id = ?", bookingID).Updates(fields).Error; err != nil {
				return fmt.Errorf("update booking: %w", err)
			}
		}
		var err error
		res, err = recomputeTx(tx, bookingID, TriggerBookingUpdated)
		return err
	})
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	s.afterCommit(ctx, res)
	return res, nil
}

// StatusChange reports a manual status edit. Result is set only when the
// ledger was rerun.
type StatusChange struct {
	From   domain.BookingStatus
	To     domain.BookingStatus
	Result *Result
}

// ChangeStatus applies a manual status edit and fields to the locked booking.
// The transition is checked against the locked row, so a status the ledger
// set concurrently cannot be skipped over. With recompute the balance is
// rerun in the same transaction.
func (s *Service) ChangeStatus(ctx context.Context, bookingID int64, to domain.BookingStatus, fields map[string]any, recompute bool) (*StatusChange, error) {
	change := &StatusChange{To: to}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if !domain.CanTransition(b.Status, to) {
			return ErrInvalidTransition
		}
		change.From = b.Status

		updates := make(map[string]any, len(fields)+1)
		for k, v := range fields {
			updates[k] = v
		}
		updates["status"] = to
		if err := tx.Model(&domain.Booking{}).Where("id = ?", bookingID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update booking: %w", err)
		}

		if recompute {
			change.Result, err = recomputeTx(tx, bookingID, TriggerBookingUpdated)
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidTransition) {
			s.recordFailure(err)
		}
		return nil, err
	}
	if change.Result != nil {
		s.afterCommit(ctx, change.Result)
	}
	return change, nil
}

// FillAmount is FillAmounts for a single booking.
func (s *Service) FillAmount(ctx context.Context, b *domain.Booking) error {
	if b == nil || b.Amount != nil {
		return nil
	}
	rows, err := s.FillAmounts(ctx, []domain.Booking{*b})
	if err != nil {
		return err
	}
	*b = rows[0]
	return nil
}

// FillAmounts backfills missing gross amounts from the course date or course
// price and persists them. An amount that is already set is never replaced,
// in memory or in the database. Rows are returned in the same order.
func (s *Service) FillAmounts(ctx context.Context, rows []domain.Booking) ([]domain.Booking, error) {
	missing := make([]int, 0)
	for i := range rows {
		if rows[i].Amount == nil {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return rows, nil
	}

	var filled []*Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, i := range missing {
			b := &rows[i]
			price, err := repository.ResolveListPrice(tx, b.CourseDateID, b.CourseID)
			if err != nil {
				return fmt.Errorf("resolve price for booking %d: %w", b.ID, err)
			}
			if price == nil {
				continue
			}

			amount := money.Round2(*price)
			net := money.Net(amount, b.VATRate)
			upd := tx.Model(&domain.Booking{}).
				Where("id = ? AND amount IS NULL", b.ID).
				Updates(map[string]any{"amount": amount, "net_price": net})
			if upd.Error != nil {
				return fmt.Errorf("backfill booking %d: %w", b.ID, upd.Error)
			}
			if upd.RowsAffected == 0 {
				// filled by someone else in the meantime, or gone
				if err := reloadLedgerFields(tx, b); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				continue
			}

			b.Amount = &amount
			b.NetPrice = &net
			res, err := recomputeTx(tx, b.ID, TriggerBackfill)
			if err != nil {
				return err
			}
			b.PaidTotal = res.PaidTotal
			b.Saldo = res.Saldo
			b.Status = res.Status
			filled = append(filled, res)
		}
		return nil
	})
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	for _, res := range filled {
		s.afterCommit(ctx, res)
	}
	return rows, nil
}

// RecomputeAll recomputes every booking and returns how many were processed.
// Failures are collected so one bad row does not stop the sweep.
func (s *Service) RecomputeAll(ctx context.Context) (int, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&domain.Booking{}).Order("id asc").Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("list bookings: %w", err)
	}

	var (
		done int
		errs []error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.Recompute(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("booking %d: %w", id, err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

func lockBooking(tx *gorm.DB, bookingID int64) (*domain.Booking, error) {
	var b domain.Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "amount", "status").
		First(&b, bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func recomputeTx(tx *gorm.DB, bookingID int64, trigger string) (*Result, error) {
	b, err := lockBooking(tx, bookingID)
	if err != nil {
		return nil, err
	}

	var amounts []float64
	if err := tx.Model(&domain.Payment{}).Where("booking_id = ?", bookingID).Pluck("amount", &amounts).Error; err != nil {
		return nil, fmt.Errorf("sum payments: %w", err)
	}

	// an unpriced booking still gets its balance, but its status is left
	// alone until an amount is known
	var gross float64
	status := b.Status
	paid := money.Sum(amounts...)
	if b.Amount != nil {
		gross = *b.Amount
	}
	open := money.Open(gross, paid)
	if b.Amount != nil {
		status = decide(gross, open, b.Status)
	}

	if err := tx.Model(&domain.Booking{}).Where("id = ?", bookingID).Updates(map[string]any{
		"saldo":      open,
		"paid_total": paid,
		"status":     status,
	}).Error; err != nil {
		return nil, fmt.Errorf("persist ledger: %w", err)
	}

	return &Result{
		BookingID:      bookingID,
		Amount:         b.Amount,
		PaidTotal:      paid,
		Saldo:          open,
		Status:         status,
		PreviousStatus: b.Status,
		Trigger:        trigger,
	}, nil
}

func reloadLedgerFields(tx *gorm.DB, b *domain.Booking) error {
	var cur domain.Booking
	if err := tx.Select("id", "amount", "net_price", "saldo", "paid_total", "status").First(&cur, b.ID).Error; err != nil {
		return err
	}
	b.Amount = cur.Amount
	b.NetPrice = cur.NetPrice
	b.Saldo = cur.Saldo
	b.PaidTotal = cur.PaidTotal
	b.Status = cur.Status
	return nil
}

func (s *Service) afterCommit(ctx context.Context, res *Result) {
	metrics.IncLedgerRecompute("ok")
	if res.StatusChanged() {
		metrics.IncStatusTransition(string(res.PreviousStatus), string(res.Status), "ledger")
		s.logger.Info("booking status changed by ledger",
			"booking_id", res.BookingID,
			"from", res.PreviousStatus,
			"to", res.Status,
			"trigger", res.Trigger,
		)
	}
	s.publish(ctx, events.KeyLedgerUpdated, res)
}

func (s *Service) recordFailure(err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrPaymentNotFound):
		metrics.IncLedgerRecompute("not_found")
	default:
		metrics.IncLedgerRecompute("error")
	}
}

func (s *Service) publish(ctx context.Context, key string, payload any) {
	if err := s.publisher.Publish(ctx, key, payload); err != nil {
		s.logger.Warn("event publish failed", "event", key, "error", err)
	}
}
