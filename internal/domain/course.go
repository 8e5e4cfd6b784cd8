package domain

import "time"

type Course struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Price       *float64  `json:"price"`
	VATRate     float64   `json:"vat_rate" gorm:"column:vat_rate;not null;default:0"`
	Duration    string    `json:"duration,omitempty" gorm:"size:64"`
	TeacherID   *int64    `json:"teacher_id,omitempty" gorm:"index"`
	Active      bool      `json:"active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Course) TableName() string { return "courses" }

// CourseDate is one scheduled offering of a course. A non-nil Price overrides
// the course list price.
type CourseDate struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	CourseID  int64      `json:"course_id" gorm:"not null;index"`
	StartDate time.Time  `json:"start_date" gorm:"not null"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Location  string     `json:"location,omitempty" gorm:"size:255"`
	Price     *float64   `json:"price,omitempty"`
	Seats     int        `json:"seats" gorm:"not null;default:0"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (CourseDate) TableName() string { return "course_dates" }

type Partner struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"size:255;not null"`
	ContactName    string    `json:"contact_name,omitempty" gorm:"size:255"`
	Email          string    `json:"email,omitempty" gorm:"size:255"`
	Phone          string    `json:"phone,omitempty" gorm:"size:64"`
	CommissionRate float64   `json:"commission_rate" gorm:"not null;default:0"`
	Notes          string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Partner) TableName() string { return "partners" }

type MaterialKind string

const (
	MaterialPDF   MaterialKind = "pdf"
	MaterialVideo MaterialKind = "video"
	MaterialLink  MaterialKind = "link"
)

// Material points at a file kept in external object storage.
type Material struct {
	ID                int64        `json:"id" gorm:"primaryKey"`
	CourseID          int64        `json:"course_id" gorm:"not null;index"`
	Title             string       `json:"title" gorm:"size:255;not null"`
	URL               string       `json:"url" gorm:"type:text;not null"`
	Kind              MaterialKind `json:"kind" gorm:"type:varchar(16);not null"`
	VisibleToStudents bool         `json:"visible_to_students" gorm:"not null;default:false"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (Material) TableName() string { return "materials" }
