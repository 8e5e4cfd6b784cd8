package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"coursedesk/internal/domain"
	"coursedesk/internal/metrics"
	"coursedesk/internal/pkg/money"
	"coursedesk/internal/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	codeAttempts     = 3
)

type Service struct {
	bookings       BookingRepository
	payments       PaymentReader
	users          UserReader
	courses        CourseCatalog
	partners       PartnerReader
	ledger         Ledger
	defaultVATRate float64
	logger         *slog.Logger
}

func NewService(
	bookings BookingRepository,
	payments PaymentReader,
	users UserReader,
	courses CourseCatalog,
	partners PartnerReader,
	ledger Ledger,
	defaultVATRate float64,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		bookings:       bookings,
		payments:       payments,
		users:          users,
		courses:        courses,
		partners:       partners,
		ledger:         ledger,
		defaultVATRate: defaultVATRate,
		logger:         logger,
	}
}

// NewCode returns a human readable booking code like BK-250314-7F3A9C.
func NewCode(day time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("BK-%s-%s", day.Format("060102"), suffix)
}

func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	status := domain.BookingOpen
	if req.Status != "" {
		st, err := domain.ParseBookingStatus(req.Status)
		if err != nil {
			return nil, ErrInvalidStatus
		}
		status = st
	}

	student, err := s.users.GetByID(ctx, req.StudentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if student.Role != domain.RoleStudent {
		return nil, ErrStudentNotFound
	}

	b := &domain.Booking{
		BookingDate:  time.Now().UTC(),
		Deposit:      money.Round2(req.Deposit),
		Duration:     req.Duration,
		Status:       status,
		Notes:        req.Notes,
		StudentID:    student.ID,
		StudentName:  student.Name,
		StudentEmail: student.Email,
	}
	if req.BookingDate != nil {
		b.BookingDate = *req.BookingDate
	}

	course, listPrice, err := s.attachCourse(ctx, b, req.CourseDateID, req.CourseID)
	if err != nil {
		return nil, err
	}
	if req.PartnerID != nil {
		if err := s.attachPartner(ctx, b, *req.PartnerID); err != nil {
			return nil, err
		}
	}

	b.VATRate = s.defaultVATRate
	if course != nil && course.VATRate > 0 {
		b.VATRate = course.VATRate
	}
	if req.VATRate != nil {
		b.VATRate = *req.VATRate
	}
	if b.Duration == "" && course != nil {
		b.Duration = course.Duration
	}

	switch {
	case req.Amount != nil:
		b.Amount = req.Amount
	case listPrice != nil:
		b.Amount = listPrice
	}
	if b.Amount != nil {
		amount := money.Round2(*b.Amount)
		net := money.Net(amount, b.VATRate)
		b.Amount, b.NetPrice = &amount, &net
		b.Saldo = amount
	}

	if err := s.createWithCode(ctx, b); err != nil {
		return nil, err
	}

	res, err := s.ledger.Recompute(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Saldo, b.PaidTotal, b.Status = res.Saldo, res.PaidTotal, res.Status

	s.logger.Info("booking created", "booking_id", b.ID, "code", b.Code, "student_id", b.StudentID)
	return b, nil
}

func (s *Service) createWithCode(ctx context.Context, b *domain.Booking) error {
	for i := 0; i < codeAttempts; i++ {
		b.Code = NewCode(b.BookingDate)
		err := s.bookings.Create(ctx, b)
		if err == nil {
			return nil
		}
		if !repository.IsUniqueViolation(err) {
			return err
		}
	}
	return ErrDuplicateCode
}

// attachCourse fills the course links and snapshots and returns the course
// plus the list price that applies (course date price first).
func (s *Service) attachCourse(ctx context.Context, b *domain.Booking, courseDateID, courseID *int64) (*domain.Course, *float64, error) {
	if courseDateID != nil {
		d, err := s.courses.GetDate(ctx, *courseDateID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, nil, ErrCourseDateNotFound
			}
			return nil, nil, err
		}
		if courseID != nil && *courseID != d.CourseID {
			return nil, nil, ErrValidation
		}

		start := d.StartDate
		b.CourseDateID = &d.ID
		b.CourseID = &d.CourseID
		b.CourseStart = &start

		course := d.Course
		if course == nil {
			if course, err = s.courses.GetByID(ctx, d.CourseID); err != nil && !repository.IsNotFound(err) {
				return nil, nil, err
			}
		}
		price := d.Price
		if course != nil {
			b.CourseTitle = course.Title
			if price == nil {
				price = course.Price
			}
		}
		return course, price, nil
	}

	if courseID != nil {
		course, err := s.courses.GetByID(ctx, *courseID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, nil, ErrCourseNotFound
			}
			return nil, nil, err
		}
		b.CourseID = &course.ID
		b.CourseTitle = course.Title
		return course, course.Price, nil
	}
	return nil, nil, nil
}

func (s *Service) attachPartner(ctx context.Context, b *domain.Booking, partnerID int64) error {
	p, err := s.partners.GetByID(ctx, partnerID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrPartnerNotFound
		}
		return err
	}
	b.PartnerID = &p.ID
	b.PartnerName = p.Name
	return nil
}

// GetBooking returns one booking with its payments. A missing amount is
// backfilled first.
func (s *Service) GetBooking(ctx context.Context, id int64) (*BookingDetails, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if err := s.ledger.FillAmount(ctx, b); err != nil {
		return nil, err
	}

	payments, err := s.payments.ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []domain.Payment{}
	}

	return &BookingDetails{
		Booking:    b,
		Payments:   payments,
		OpenAmount: b.Saldo,
	}, nil
}

func (s *Service) ListBookings(ctx context.Context, q ListBookingsQuery) (*BookingList, error) {
	f, err := toFilter(q)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, err
	}
	rows, err = s.ledger.FillAmounts(ctx, rows)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Booking{}
	}

	return &BookingList{Items: rows, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func toFilter(q ListBookingsQuery) (repository.BookingFilter, error) {
	f := repository.BookingFilter{
		StudentID: q.StudentID,
		CourseID:  q.CourseID,
		PartnerID: q.PartnerID,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if q.Status != "" {
		st, err := domain.ParseBookingStatus(q.Status)
		if err != nil {
			return f, ErrInvalidStatus
		}
		f.Status = st
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f, nil
}

// UpdateBooking applies a partial update. Manual status changes must follow
// the transition table and are rechecked by the ledger under the row lock. A
// new amount goes through the ledger so saldo and status are recomputed in
// the same transaction.
func (s *Service) UpdateBooking(ctx context.Context, req UpdateBookingRequest) (*BookingDetails, error) {
	cur, err := s.bookings.GetByID(ctx, req.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	fields := map[string]any{}
	var manualStatus *domain.BookingStatus

	if req.Status != nil {
		to, err := domain.ParseBookingStatus(*req.Status)
		if err != nil {
			return nil, ErrInvalidStatus
		}
		if !domain.CanTransition(cur.Status, to) {
			return nil, ErrInvalidStatusTransition
		}
		if to != cur.Status {
			manualStatus = &to
		}
	}
	if req.Deposit != nil {
		fields["deposit"] = money.Round2(*req.Deposit)
	}
	if req.Duration != nil {
		fields["duration"] = *req.Duration
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.BookingDate != nil {
		fields["booking_date"] = *req.BookingDate
	}
	if req.StudentName != nil {
		fields["student_name"] = *req.StudentName
	}
	if req.StudentEmail != nil {
		fields["student_email"] = *req.StudentEmail
	}
	if err := s.relink(ctx, fields, req); err != nil {
		return nil, err
	}

	amountChanged := false
	amount, vat := cur.Amount, cur.VATRate
	if req.Amount != nil {
		v := money.Round2(*req.Amount)
		amount = &v
		fields["amount"] = v
		amountChanged = cur.Amount == nil || *cur.Amount != v
	}
	if req.VATRate != nil {
		vat = *req.VATRate
		fields["vat_rate"] = vat
	}
	if amount != nil && (req.Amount != nil || req.VATRate != nil) {
		fields["net_price"] = money.Net(*amount, vat)
	}

	switch {
	case manualStatus != nil:
		change, err := s.ledger.ChangeStatus(ctx, cur.ID, *manualStatus, fields, amountChanged)
		if err != nil {
			return nil, err
		}
		if change.From != change.To {
			metrics.IncStatusTransition(string(change.From), string(change.To), "manual")
			s.logger.Info("booking status changed manually", "booking_id", cur.ID, "from", change.From, "to", change.To)
		}
	case amountChanged:
		if _, err := s.ledger.UpdateAndRecompute(ctx, cur.ID, fields); err != nil {
			return nil, err
		}
	case len(fields) > 0:
		if err := s.bookings.Update(ctx, cur.ID, fields); err != nil {
			if repository.IsNotFound(err) {
				return nil, ErrBookingNotFound
			}
			return nil, err
		}
	}

	return s.GetBooking(ctx, cur.ID)
}

// relink resolves changed course, course date and partner references and
// refreshes the matching snapshots.
func (s *Service) relink(ctx context.Context, fields map[string]any, req UpdateBookingRequest) error {
	if req.CourseDateID != nil || req.CourseID != nil {
		var b domain.Booking
		var dateID, courseID *int64
		if req.CourseDateID != nil && *req.CourseDateID > 0 {
			dateID = req.CourseDateID
		}
		if req.CourseID != nil && *req.CourseID > 0 {
			courseID = req.CourseID
		}
		if _, _, err := s.attachCourse(ctx, &b, dateID, courseID); err != nil {
			return err
		}
		if req.CourseDateID != nil {
			fields["course_date_id"] = b.CourseDateID
			fields["course_start"] = b.CourseStart
		}
		if b.CourseID != nil || req.CourseID != nil {
			fields["course_id"] = b.CourseID
			fields["course_title"] = b.CourseTitle
		}
	}

	if req.PartnerID != nil {
		if *req.PartnerID == 0 {
			fields["partner_id"] = nil
			fields["partner_name"] = ""
			return nil
		}
		var b domain.Booking
		if err := s.attachPartner(ctx, &b, *req.PartnerID); err != nil {
			return err
		}
		fields["partner_id"] = b.PartnerID
		fields["partner_name"] = b.PartnerName
	}
	return nil
}

func (s *Service) DeleteBooking(ctx context.Context, id int64) error {
	if err := s.bookings.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrBookingNotFound
		}
		return err
	}
	s.logger.Info("booking deleted", "booking_id", id)
	return nil
}

func (s *Service) Statuses() []domain.BookingStatus {
	return domain.BookingStatuses()
}

// ExportBookings renders the filtered listing, without paging, as xlsx.
func (s *Service) ExportBookings(ctx context.Context, q ListBookingsQuery) ([]byte, error) {
	q.Limit, q.Offset = maxListLimit, 0
	list, err := s.ListBookings(ctx, q)
	if err != nil {
		return nil, err
	}
	buf, err := renderXLSX(list.Items)
	if err != nil {
		return nil, fmt.Errorf("render export: %w", err)
	}
	return buf, nil
}
