package domain

import "time"

// Booking is one student's enrollment in one course offering. Name, email, title
// and partner fields are snapshots taken when the booking is recorded.
type Booking struct {
	ID          int64         `json:"id" gorm:"primaryKey"`
	Code        string        `json:"code" gorm:"size:32;uniqueIndex;not null"`
	BookingDate time.Time     `json:"booking_date" gorm:"not null"`
	Amount      *float64      `json:"amount"`
	VATRate     float64       `json:"vat_rate" gorm:"column:vat_rate;not null;default:0"`
	NetPrice    *float64      `json:"net_price"`
	Deposit     float64       `json:"deposit" gorm:"not null;default:0"`
	Saldo       float64       `json:"saldo" gorm:"not null;default:0"`
	PaidTotal   float64       `json:"paid_total" gorm:"not null;default:0"`
	Duration    string        `json:"duration,omitempty" gorm:"size:64"`
	Status      BookingStatus `json:"status" gorm:"type:varchar(32);not null;default:offen;index"`
	Notes       string        `json:"notes,omitempty" gorm:"type:text"`

	StudentID    int64  `json:"student_id" gorm:"not null;index"`
	CourseDateID *int64 `json:"course_date_id,omitempty" gorm:"index"`
	CourseID     *int64 `json:"course_id,omitempty" gorm:"index"`
	PartnerID    *int64 `json:"partner_id,omitempty" gorm:"index"`

	StudentName  string     `json:"student_name" gorm:"size:255"`
	StudentEmail string     `json:"student_email" gorm:"size:255"`
	CourseTitle  string     `json:"course_title" gorm:"size:255"`
	CourseStart  *time.Time `json:"course_start,omitempty"`
	PartnerName  string     `json:"partner_name,omitempty" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// Payment is a single money receipt applied against a booking.
type Payment struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	BookingID   int64     `json:"booking_id" gorm:"not null;index"`
	PaymentDate time.Time `json:"payment_date" gorm:"not null"`
	Amount      float64   `json:"amount" gorm:"not null"`
	Method      string    `json:"method,omitempty" gorm:"size:64"`
	Note        string    `json:"note,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

// PaymentMethods is the list the admin UI offers. Other values are accepted.
var PaymentMethods = []string{"Überweisung", "Bar", "PayPal", "Kreditkarte", "Lastschrift"}
