package repository

import (
	"context"

	"coursedesk/internal/domain"

	"gorm.io/gorm"
)

type SupportRepository struct {
	db *gorm.DB
}

func NewSupportRepository(db *gorm.DB) *SupportRepository {
	return &SupportRepository{db: db}
}

func (r *SupportRepository) Create(ctx context.Context, t *domain.SupportTicket) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *SupportRepository) GetByID(ctx context.Context, id int64) (*domain.SupportTicket, error) {
	var t domain.SupportTicket
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns tickets newest first. userID 0 lists every user's tickets.
func (r *SupportRepository) List(ctx context.Context, userID int64, status domain.TicketStatus) ([]domain.SupportTicket, error) {
	q := r.db.WithContext(ctx).Model(&domain.SupportTicket{})
	if userID > 0 {
		q = q.Where("user_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.SupportTicket
	if err := q.Order("created_at desc, id desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SupportRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.SupportTicket{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
