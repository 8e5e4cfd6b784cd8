package domain

import "time"

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
	LeadLost      LeadStatus = "lost"
)

// Lead is a prospective student who asked about a course.
type Lead struct {
	ID              int64      `json:"id" db:"id" gorm:"primaryKey"`
	Name            string     `json:"name" db:"name" gorm:"size:255;not null"`
	Email           string     `json:"email" db:"email" gorm:"size:255;not null;index"`
	Phone           string     `json:"phone,omitempty" db:"phone" gorm:"size:64"`
	CourseID        *int64     `json:"course_id,omitempty" db:"course_id" gorm:"index"`
	Source          string     `json:"source,omitempty" db:"source" gorm:"size:64"`
	Status          LeadStatus `json:"status" db:"status" gorm:"type:varchar(16);not null;index"`
	Notes           string     `json:"notes,omitempty" db:"notes" gorm:"type:text"`
	FollowUpCount   int        `json:"follow_up_count" db:"follow_up_count" gorm:"not null;default:0"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty" db:"last_contacted_at"`
	ConvertedUserID *int64     `json:"converted_user_id,omitempty" db:"converted_user_id"`
	ConvertedAt     *time.Time `json:"converted_at,omitempty" db:"converted_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

func (Lead) TableName() string { return "leads" }

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadLost:
		return true
	}
	return false
}

func (l *Lead) IsConverted() bool {
	return l.Status == LeadConverted
}
