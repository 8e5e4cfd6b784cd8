package repository

import (
	"context"

	"coursedesk/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) List(ctx context.Context) ([]domain.PagePermission, error) {
	var out []domain.PagePermission
	if err := r.db.WithContext(ctx).Order("role asc, page asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// AllowedPages returns the pages role may open.
func (r *PermissionRepository) AllowedPages(ctx context.Context, role domain.UserRole) ([]string, error) {
	var pages []string
	err := r.db.WithContext(ctx).Model(&domain.PagePermission{}).
		Where("role = ? AND allowed = ?", role, true).
		Order("page asc").
		Pluck("page", &pages).Error
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// Upsert sets the flag for (role, page), creating the row when missing.
func (r *PermissionRepository) Upsert(ctx context.Context, p *domain.PagePermission) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role"}, {Name: "page"}},
		DoUpdates: clause.AssignmentColumns([]string{"allowed"}),
	}).Create(p).Error
}
