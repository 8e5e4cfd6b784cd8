package lead

import "coursedesk/internal/domain"

// SubmitLeadRequest is the public enquiry form.
type SubmitLeadRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	CourseID *int64 `json:"course_id"`
	Message  string `json:"message"`
	Source   string `json:"source" validate:"omitempty,max=64"`
}

type UpdateLeadStatusRequest struct {
	Status domain.LeadStatus `json:"status" validate:"required,oneof=new contacted qualified lost"`
	Notes  string            `json:"notes"`
}

// ConvertLeadRequest carries the initial password of the student account.
type ConvertLeadRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

type LeadListResponse struct {
	Leads []domain.Lead `json:"leads"`
	Total int           `json:"total"`
}

type ConvertLeadResponse struct {
	LeadID    int64  `json:"lead_id"`
	StudentID int64  `json:"student_id"`
	Email     string `json:"email"`
}
