package repository

import (
	"context"

	"coursedesk/internal/domain"

	"gorm.io/gorm"
)

// PaymentRepository only reads; writes go through the ledger so the booking
// balance is recomputed in the same transaction.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("payment_date asc, id asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
