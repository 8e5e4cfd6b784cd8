package repository

import (
	"context"

	"coursedesk/internal/domain"

	"gorm.io/gorm"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) Create(ctx context.Context, m *domain.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MaterialRepository) GetByID(ctx context.Context, id int64) (*domain.Material, error) {
	var m domain.Material
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns materials of one course, or of all courses when courseID is 0.
func (r *MaterialRepository) List(ctx context.Context, courseID int64, visibleOnly bool) ([]domain.Material, error) {
	q := r.db.WithContext(ctx).Model(&domain.Material{})
	if courseID > 0 {
		q = q.Where("course_id = ?", courseID)
	}
	if visibleOnly {
		q = q.Where("visible_to_students = ?", true)
	}
	var out []domain.Material
	if err := q.Order("course_id asc, title asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MaterialRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Material{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *MaterialRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Material{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
