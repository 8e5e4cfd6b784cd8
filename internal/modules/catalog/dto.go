package catalog

type CreateCourseRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	VATRate     float64  `json:"vat_rate" binding:"gte=0,lte=100"`
	Duration    string   `json:"duration"`
	TeacherID   *int64   `json:"teacher_id"`
	Active      *bool    `json:"active"`
}

// UpdateCourseRequest changes only the fields that are present.
type UpdateCourseRequest struct {
	ID          int64    `json:"id" binding:"required"`
	Title       *string  `json:"title" binding:"omitempty,min=1"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	ClearPrice  bool     `json:"clear_price"`
	VATRate     *float64 `json:"vat_rate" binding:"omitempty,gte=0,lte=100"`
	Duration    *string  `json:"duration"`
	TeacherID   *int64   `json:"teacher_id"`
	Active      *bool    `json:"active"`
}

// Dates accept YYYY-MM-DD or RFC3339.
type CreateCourseDateRequest struct {
	CourseID  int64    `json:"course_id" binding:"required"`
	StartDate string   `json:"start_date" binding:"required"`
	EndDate   string   `json:"end_date"`
	Location  string   `json:"location"`
	Price     *float64 `json:"price" binding:"omitempty,gte=0"`
	Seats     int      `json:"seats" binding:"gte=0"`
}

type UpdateCourseDateRequest struct {
	ID         int64    `json:"id" binding:"required"`
	StartDate  *string  `json:"start_date"`
	EndDate    *string  `json:"end_date"`
	Location   *string  `json:"location"`
	Price      *float64 `json:"price" binding:"omitempty,gte=0"`
	ClearPrice bool     `json:"clear_price"`
	Seats      *int     `json:"seats" binding:"omitempty,gte=0"`
}

type PartnerRequest struct {
	Name           string  `json:"name" binding:"required"`
	ContactName    string  `json:"contact_name"`
	Email          string  `json:"email" binding:"omitempty,email"`
	Phone          string  `json:"phone"`
	CommissionRate float64 `json:"commission_rate" binding:"gte=0,lte=100"`
	Notes          string  `json:"notes"`
}

type UpdatePartnerRequest struct {
	ID             int64    `json:"id" binding:"required"`
	Name           *string  `json:"name" binding:"omitempty,min=1"`
	ContactName    *string  `json:"contact_name"`
	Email          *string  `json:"email" binding:"omitempty,email"`
	Phone          *string  `json:"phone"`
	CommissionRate *float64 `json:"commission_rate" binding:"omitempty,gte=0,lte=100"`
	Notes          *string  `json:"notes"`
}

type CreateMaterialRequest struct {
	CourseID          int64  `json:"course_id" binding:"required"`
	Title             string `json:"title" binding:"required"`
	URL               string `json:"url" binding:"required,url"`
	Kind              string `json:"kind" binding:"required,oneof=pdf video link"`
	VisibleToStudents bool   `json:"visible_to_students"`
}

type UpdateMaterialRequest struct {
	ID                int64   `json:"id" binding:"required"`
	Title             *string `json:"title" binding:"omitempty,min=1"`
	URL               *string `json:"url" binding:"omitempty,url"`
	Kind              *string `json:"kind" binding:"omitempty,oneof=pdf video link"`
	VisibleToStudents *bool   `json:"visible_to_students"`
}

// Caller identifies who is asking; it drives visibility and write rules.
type Caller struct {
	UserID int64
	Role   string
}
