package domain

// PagePermission says whether a role may open an admin UI page.
type PagePermission struct {
	ID      int64    `json:"id" gorm:"primaryKey"`
	Role    UserRole `json:"role" gorm:"type:varchar(16);not null;uniqueIndex:idx_role_page"`
	Page    string   `json:"page" gorm:"size:64;not null;uniqueIndex:idx_role_page"`
	Allowed bool     `json:"allowed" gorm:"not null"`
}

func (PagePermission) TableName() string { return "page_permissions" }

const (
	PageBookings  = "bookings"
	PagePayments  = "payments"
	PageCourses   = "courses"
	PagePartners  = "partners"
	PageLeads     = "leads"
	PageStudents  = "students"
	PageMaterials = "materials"
	PageSupport   = "support"
	PageReports   = "reports"
)

// AllPages is the known page vocabulary.
func AllPages() []string {
	return []string{PageBookings, PagePayments, PageCourses, PagePartners, PageLeads, PageStudents, PageMaterials, PageSupport, PageReports}
}

// DefaultPagePermissions seeds a fresh database.
func DefaultPagePermissions() []PagePermission {
	all := AllPages()
	out := make([]PagePermission, 0, len(all)*3)
	for _, p := range all {
		out = append(out, PagePermission{Role: RoleAdmin, Page: p, Allowed: true})
	}
	for _, p := range []string{PageCourses, PageMaterials, PageSupport} {
		out = append(out, PagePermission{Role: RoleTeacher, Page: p, Allowed: true})
	}
	for _, p := range []string{PageMaterials, PageSupport} {
		out = append(out, PagePermission{Role: RoleStudent, Page: p, Allowed: true})
	}
	return out
}

// AllModels lists every table for AutoMigrate.
func AllModels() []any {
	return []any{
		&User{},
		&Course{},
		&CourseDate{},
		&Partner{},
		&Booking{},
		&Payment{},
		&Lead{},
		&Material{},
		&SupportTicket{},
		&PagePermission{},
	}
}
