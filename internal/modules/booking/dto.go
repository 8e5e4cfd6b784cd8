package booking

import (
	"time"

	"coursedesk/internal/domain"
)

type CreateBookingRequest struct {
	StudentID    int64      `json:"student_id" binding:"required,gt=0"`
	CourseDateID *int64     `json:"course_date_id" binding:"omitempty,gt=0"`
	CourseID     *int64     `json:"course_id" binding:"omitempty,gt=0"`
	PartnerID    *int64     `json:"partner_id" binding:"omitempty,gt=0"`
	BookingDate  *time.Time `json:"booking_date"`
	Amount       *float64   `json:"amount" binding:"omitempty,gte=0"`
	VATRate      *float64   `json:"vat_rate" binding:"omitempty,gte=0,lte=100"`
	Deposit      float64    `json:"deposit" binding:"gte=0"`
	Duration     string     `json:"duration" binding:"max=64"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes"`
}

// UpdateBookingRequest is a partial update: nil fields are left alone. A zero
// reference id clears the link.
type UpdateBookingRequest struct {
	ID           int64      `json:"id" binding:"required,gt=0"`
	Status       *string    `json:"status"`
	Amount       *float64   `json:"amount" binding:"omitempty,gte=0"`
	VATRate      *float64   `json:"vat_rate" binding:"omitempty,gte=0,lte=100"`
	Deposit      *float64   `json:"deposit" binding:"omitempty,gte=0"`
	Duration     *string    `json:"duration" binding:"omitempty,max=64"`
	Notes        *string    `json:"notes"`
	BookingDate  *time.Time `json:"booking_date"`
	CourseDateID *int64     `json:"course_date_id" binding:"omitempty,gte=0"`
	CourseID     *int64     `json:"course_id" binding:"omitempty,gte=0"`
	PartnerID    *int64     `json:"partner_id" binding:"omitempty,gte=0"`
	StudentName  *string    `json:"student_name"`
	StudentEmail *string    `json:"student_email" binding:"omitempty,email"`
}

type ListBookingsQuery struct {
	Status    string `form:"status"`
	StudentID int64  `form:"student_id"`
	CourseID  int64  `form:"course_id"`
	PartnerID int64  `form:"partner_id"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}

// BookingDetails is a booking with its payments. OpenAmount is the stored
// saldo; there is no second computation path.
type BookingDetails struct {
	*domain.Booking
	Payments   []domain.Payment `json:"payments"`
	OpenAmount float64          `json:"open_amount"`
}

type BookingList struct {
	Items  []domain.Booking `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}
