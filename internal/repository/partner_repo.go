package repository

import (
	"context"

	"coursedesk/internal/domain"

	"gorm.io/gorm"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(ctx context.Context, p *domain.Partner) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PartnerRepository) GetByID(ctx context.Context, id int64) (*domain.Partner, error) {
	var p domain.Partner
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartnerRepository) List(ctx context.Context) ([]domain.Partner, error) {
	var out []domain.Partner
	if err := r.db.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PartnerRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Partner{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the partner. Bookings keep the partner name snapshot.
func (r *PartnerRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Booking{}).Where("partner_id = ?", id).Update("partner_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Partner{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
