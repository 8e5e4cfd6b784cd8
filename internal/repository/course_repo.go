package repository

import (
	"context"
	"errors"

	"coursedesk/internal/domain"

	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	var c domain.Course
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) List(ctx context.Context, activeOnly bool, teacherID *int64) ([]domain.Course, error) {
	q := r.db.WithContext(ctx).Model(&domain.Course{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if teacherID != nil {
		q = q.Where("teacher_id = ?", *teacherID)
	}
	var out []domain.Course
	if err := q.Order("title asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CourseRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Course{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a course with its dates and materials. Bookings keep their
// snapshots and amount but lose both links.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dates := tx.Model(&domain.CourseDate{}).Select("id").Where("course_id = ?", id)
		if err := tx.Model(&domain.Booking{}).
			Where("course_date_id IN (?)", dates).
			Update("course_date_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Booking{}).
			Where("course_id = ?", id).
			Update("course_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&domain.CourseDate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&domain.Material{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Course{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *CourseRepository) CreateDate(ctx context.Context, d *domain.CourseDate) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *CourseRepository) GetDate(ctx context.Context, id int64) (*domain.CourseDate, error) {
	var d domain.CourseDate
	if err := r.db.WithContext(ctx).Preload("Course").First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *CourseRepository) ListDates(ctx context.Context, courseID *int64) ([]domain.CourseDate, error) {
	q := r.db.WithContext(ctx).Preload("Course")
	if courseID != nil {
		q = q.Where("course_id = ?", *courseID)
	}
	var out []domain.CourseDate
	if err := q.Order("start_date asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CourseRepository) UpdateDate(ctx context.Context, id int64, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.CourseDate{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteDate removes a course date. Bookings keep their amount and snapshots
// but lose the link.
func (r *CourseRepository) DeleteDate(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Booking{}).
			Where("course_date_id = ?", id).
			Update("course_date_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.CourseDate{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *CourseRepository) ResolveListPrice(ctx context.Context, courseDateID, courseID *int64) (*float64, error) {
	return ResolveListPrice(r.db.WithContext(ctx), courseDateID, courseID)
}

// ResolveListPrice finds the price a booking should carry: the course date's
// own price, else the price of the date's course, else the price of the
// directly linked course. Nil means no price could be found.
func ResolveListPrice(db *gorm.DB, courseDateID, courseID *int64) (*float64, error) {
	if courseDateID != nil {
		var d domain.CourseDate
		err := db.Preload("Course").First(&d, *courseDateID).Error
		switch {
		case err == nil:
			if d.Price != nil {
				return d.Price, nil
			}
			if d.Course != nil && d.Course.Price != nil {
				return d.Course.Price, nil
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	if courseID != nil {
		var c domain.Course
		err := db.Select("id", "price").First(&c, *courseID).Error
		if err == nil {
			return c.Price, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}
