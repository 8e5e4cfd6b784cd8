package domain

import "time"

type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketAnswered TicketStatus = "answered"
	TicketClosed   TicketStatus = "closed"
)

type SupportTicket struct {
	ID         int64        `json:"id" gorm:"primaryKey"`
	Reference  string       `json:"reference" gorm:"size:32;uniqueIndex;not null"`
	UserID     int64        `json:"user_id" gorm:"not null;index"`
	Subject    string       `json:"subject" gorm:"size:255;not null"`
	Body       string       `json:"body" gorm:"type:text;not null"`
	Status     TicketStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	Answer     string       `json:"answer,omitempty" gorm:"type:text"`
	AnsweredBy *int64       `json:"answered_by,omitempty"`
	AnsweredAt *time.Time   `json:"answered_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (SupportTicket) TableName() string { return "support_tickets" }
