package catalog

import (
	"context"
	"strings"
	"time"

	"coursedesk/internal/domain"
	"coursedesk/internal/repository"
)

type Service struct {
	courseRepo   *repository.CourseRepository
	partnerRepo  *repository.PartnerRepository
	materialRepo *repository.MaterialRepository
	userRepo     *repository.UserRepository
}

func NewService(
	courseRepo *repository.CourseRepository,
	partnerRepo *repository.PartnerRepository,
	materialRepo *repository.MaterialRepository,
	userRepo *repository.UserRepository,
) *Service {
	return &Service{courseRepo, partnerRepo, materialRepo, userRepo}
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// notFound maps gorm's missing-row error to sentinel and passes the rest on.
func notFound(err, sentinel error) error {
	if repository.IsNotFound(err) {
		return sentinel
	}
	return err
}

/* ---------- COURSES ---------- */

func (s *Service) checkTeacher(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	u, err := s.userRepo.GetByID(ctx, *id)
	if err != nil {
		return notFound(err, ErrTeacherNotFound)
	}
	if u.Role != domain.RoleTeacher {
		return ErrTeacherNotFound
	}
	return nil
}

func (s *Service) CreateCourse(ctx context.Context, req CreateCourseRequest) (*domain.Course, error) {
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	course := &domain.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Price:       req.Price,
		VATRate:     req.VATRate,
		Duration:    req.Duration,
		TeacherID:   req.TeacherID,
		Active:      req.Active == nil || *req.Active,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// GetCourse hides inactive courses from students.
func (s *Service) GetCourse(ctx context.Context, caller Caller, id int64) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	if caller.Role == string(domain.RoleStudent) && !course.Active {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// ListCourses returns active courses to students and everything to staff.
// mine narrows a teacher's list to their own courses.
func (s *Service) ListCourses(ctx context.Context, caller Caller, mine bool) ([]domain.Course, error) {
	var teacherID *int64
	if mine && caller.Role == string(domain.RoleTeacher) {
		teacherID = &caller.UserID
	}
	out, err := s.courseRepo.List(ctx, caller.Role == string(domain.RoleStudent), teacherID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Course{}
	}
	return out, nil
}

func (s *Service) UpdateCourse(ctx context.Context, req UpdateCourseRequest) (*domain.Course, error) {
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.ClearPrice {
		fields["price"] = nil
	} else if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.VATRate != nil {
		fields["vat_rate"] = *req.VATRate
	}
	if req.Duration != nil {
		fields["duration"] = *req.Duration
	}
	if req.TeacherID != nil {
		fields["teacher_id"] = *req.TeacherID
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if len(fields) == 0 {
		return nil, ErrValidation
	}

	if err := s.courseRepo.Update(ctx, req.ID, fields); err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}
	course, err := s.courseRepo.GetByID(ctx, req.ID)
	return course, notFound(err, ErrCourseNotFound)
}

func (s *Service) DeleteCourse(ctx context.Context, id int64) error {
	return notFound(s.courseRepo.Delete(ctx, id), ErrCourseNotFound)
}

/* ---------- COURSE DATES ---------- */

func (s *Service) CreateCourseDate(ctx context.Context, req CreateCourseDateRequest) (*domain.CourseDate, error) {
	if _, err := s.courseRepo.GetByID(ctx, req.CourseID); err != nil {
		return nil, notFound(err, ErrCourseNotFound)
	}

	start, err := parseDay(req.StartDate)
	if err != nil {
		return nil, err
	}
	d := &domain.CourseDate{
		CourseID:  req.CourseID,
		StartDate: start,
		Location:  strings.TrimSpace(req.Location),
		Price:     req.Price,
		Seats:     req.Seats,
	}
	if req.EndDate != "" {
		end, err := parseDay(req.EndDate)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, ErrValidation
		}
		d.EndDate = &end
	}

	if err := s.courseRepo.CreateDate(ctx, d); err != nil {
		return nil, err
	}
	return s.GetCourseDate(ctx, d.ID)
}

func (s *Service) GetCourseDate(ctx context.Context, id int64) (*domain.CourseDate, error) {
	d, err := s.courseRepo.GetDate(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrCourseDateNotFound)
	}
	return d, nil
}

func (s *Service) ListCourseDates(ctx context.Context, courseID *int64) ([]domain.CourseDate, error) {
	out, err := s.courseRepo.ListDates(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.CourseDate{}
	}
	return out, nil
}

// UpdateCourseDate does not touch bookings: their amount was fixed when the
// booking was priced.
func (s *Service) UpdateCourseDate(ctx context.Context, req UpdateCourseDateRequest) (*domain.CourseDate, error) {
	fields := map[string]any{}
	if req.StartDate != nil {
		t, err := parseDay(*req.StartDate)
		if err != nil {
			return nil, err
		}
		fields["start_date"] = t
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			fields["end_date"] = nil
		} else {
			t, err := parseDay(*req.EndDate)
			if err != nil {
				return nil, err
			}
			fields["end_date"] = t
		}
	}
	if req.Location != nil {
		fields["location"] = strings.TrimSpace(*req.Location)
	}
	if req.ClearPrice {
		fields["price"] = nil
	} else if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Seats != nil {
		fields["seats"] = *req.Seats
	}
	if len(fields) == 0 {
		return nil, ErrValidation
	}

	if err := s.courseRepo.UpdateDate(ctx, req.ID, fields); err != nil {
		return nil, notFound(err, ErrCourseDateNotFound)
	}
	return s.GetCourseDate(ctx, req.ID)
}

func (s *Service) DeleteCourseDate(ctx context.Context, id int64) error {
	return notFound(s.courseRepo.DeleteDate(ctx, id), ErrCourseDateNotFound)
}

/* ---------- PARTNERS ---------- */

func (s *Service) CreatePartner(ctx context.Context, req PartnerRequest) (*domain.Partner, error) {
	p := &domain.Partner{
		Name:           strings.TrimSpace(req.Name),
		ContactName:    req.ContactName,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          req.Phone,
		CommissionRate: req.CommissionRate,
		Notes:          req.Notes,
	}
	if err := s.partnerRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPartner(ctx context.Context, id int64) (*domain.Partner, error) {
	p, err := s.partnerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPartnerNotFound)
	}
	return p, nil
}

func (s *Service) ListPartners(ctx context.Context) ([]domain.Partner, error) {
	out, err := s.partnerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Partner{}
	}
	return out, nil
}

func (s *Service) UpdatePartner(ctx context.Context, req UpdatePartnerRequest) (*domain.Partner, error) {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.ContactName != nil {
		fields["contact_name"] = *req.ContactName
	}
	if req.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.CommissionRate != nil {
		fields["commission_rate"] = *req.CommissionRate
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if len(fields) == 0 {
		return nil, ErrValidation
	}

	if err := s.partnerRepo.Update(ctx, req.ID, fields); err != nil {
		return nil, notFound(err, ErrPartnerNotFound)
	}
	return s.GetPartner(ctx, req.ID)
}

// DeletePartner keeps the partner name snapshot on existing bookings.
func (s *Service) DeletePartner(ctx context.Context, id int64) error {
	return notFound(s.partnerRepo.Delete(ctx, id), ErrPartnerNotFound)
}

/* ---------- MATERIALS ---------- */

// canWrite allows admins everywhere and teachers on the courses they teach.
func (s *Service) canWrite(ctx context.Context, caller Caller, courseID int64) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return notFound(err, ErrCourseNotFound)
	}
	switch domain.UserRole(caller.Role) {
	case domain.RoleAdmin:
		return nil
	case domain.RoleTeacher:
		if course.TeacherID != nil && *course.TeacherID == caller.UserID {
			return nil
		}
	}
	return ErrForbidden
}

func (s *Service) CreateMaterial(ctx context.Context, caller Caller, req CreateMaterialRequest) (*domain.Material, error) {
	if err := s.canWrite(ctx, caller, req.CourseID); err != nil {
		return nil, err
	}

	m := &domain.Material{
		CourseID:          req.CourseID,
		Title:             strings.TrimSpace(req.Title),
		URL:               strings.TrimSpace(req.URL),
		Kind:              domain.MaterialKind(req.Kind),
		VisibleToStudents: req.VisibleToStudents,
	}
	if err := s.materialRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMaterial reports hidden materials as missing to students.
func (s *Service) GetMaterial(ctx context.Context, caller Caller, id int64) (*domain.Material, error) {
	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrMaterialNotFound)
	}
	if caller.Role == string(domain.RoleStudent) && !m.VisibleToStudents {
		return nil, ErrMaterialNotFound
	}
	return m, nil
}

func (s *Service) ListMaterials(ctx context.Context, caller Caller, courseID int64) ([]domain.Material, error) {
	out, err := s.materialRepo.List(ctx, courseID, caller.Role == string(domain.RoleStudent))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Material{}
	}
	return out, nil
}

func (s *Service) UpdateMaterial(ctx context.Context, caller Caller, req UpdateMaterialRequest) (*domain.Material, error) {
	current, err := s.materialRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, notFound(err, ErrMaterialNotFound)
	}
	if err := s.canWrite(ctx, caller, current.CourseID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.URL != nil {
		fields["url"] = strings.TrimSpace(*req.URL)
	}
	if req.Kind != nil {
		fields["kind"] = *req.Kind
	}
	if req.VisibleToStudents != nil {
		fields["visible_to_students"] = *req.VisibleToStudents
	}
	if len(fields) == 0 {
		return nil, ErrValidation
	}

	if err := s.materialRepo.Update(ctx, req.ID, fields); err != nil {
		return nil, notFound(err, ErrMaterialNotFound)
	}
	m, err := s.materialRepo.GetByID(ctx, req.ID)
	return m, notFound(err, ErrMaterialNotFound)
}

func (s *Service) DeleteMaterial(ctx context.Context, caller Caller, id int64) error {
	current, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, ErrMaterialNotFound)
	}
	if err := s.canWrite(ctx, caller, current.CourseID); err != nil {
		return err
	}
	return notFound(s.materialRepo.Delete(ctx, id), ErrMaterialNotFound)
}
