package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"coursedesk/internal/domain"
	"coursedesk/internal/modules/ledger"
	"coursedesk/internal/repository"
)

// Mock repositories
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil && b != nil {
		b.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPaymentReader struct {
	mock.Mock
}

func (m *MockPaymentReader) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockCourseCatalog struct {
	mock.Mock
}

func (m *MockCourseCatalog) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCourseCatalog) GetDate(ctx context.Context, id int64) (*domain.CourseDate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CourseDate), args.Error(1)
}

type MockPartnerReader struct {
	mock.Mock
}

func (m *MockPartnerReader) GetByID(ctx context.Context, id int64) (*domain.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Partner), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Recompute(ctx context.Context, bookingID int64) (*ledger.Result, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Result), args.Error(1)
}

func (m *MockLedger) UpdateAndRecompute(ctx context.Context, bookingID int64, fields map[string]any) (*ledger.Result, error) {
	args := m.Called(ctx, bookingID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Result), args.Error(1)
}

func (m *MockLedger) ChangeStatus(ctx context.Context, bookingID int64, to domain.BookingStatus, fields map[string]any, recompute bool) (*ledger.StatusChange, error) {
	args := m.Called(ctx, bookingID, to, fields, recompute)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.StatusChange), args.Error(1)
}

func (m *MockLedger) FillAmount(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockLedger) FillAmounts(ctx context.Context, rows []domain.Booking) ([]domain.Booking, error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type mocks struct {
	bookings *MockBookingRepository
	payments *MockPaymentReader
	users    *MockUserReader
	courses  *MockCourseCatalog
	partners *MockPartnerReader
	ledger   *MockLedger
}

func newTestService() (*Service, *mocks) {
	m := &mocks{
		bookings: new(MockBookingRepository),
		payments: new(MockPaymentReader),
		users:    new(MockUserReader),
		courses:  new(MockCourseCatalog),
		partners: new(MockPartnerReader),
		ledger:   new(MockLedger),
	}
	svc := NewService(m.bookings, m.payments, m.users, m.courses, m.partners, m.ledger, 19, nil)
	return svc, m
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestNewCode(t *testing.T) {
	code := NewCode(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^BK-250314-[0-9A-F]{6}$`), code)
	assert.NotEqual(t, code, NewCode(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)))
}

func TestService_CreateBooking_Success(t *testing.T) {
	svc, m := newTestService()
	ctx := context.Background()
	start := time.Date(2025, 5, 5, 9, 0, 0, 0, time.UTC)

	m.users.On("GetByID", ctx, int64(7)).Return(&domain.User{ID: 7, Name: "Anna Schmidt", Email: "anna@example.de", Role: domain.RoleStudent}, nil)
	m.courses.On("GetDate", ctx, int64(3)).Return(&domain.CourseDate{
		ID: 3, CourseID: 2, StartDate: start,
		Course: &domain.Course{ID: 2, Title: "Excel Grundlagen", Price: f64(500), VATRate: 19, Duration: "5 Tage"},
	}, nil)
	m.partners.On("GetByID", ctx, int64(4)).Return(&domain.Partner{ID: 4, Name: "Jobcenter Mitte"}, nil)
	m.bookings.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Amount != nil && *b.Amount == 500 &&
			b.NetPrice != nil && *b.NetPrice == 420.17 &&
			b.VATRate == 19 &&
			b.CourseTitle == "Excel Grundlagen" &&
			b.StudentName == "Anna Schmidt" &&
			b.PartnerName == "Jobcenter Mitte" &&
			b.Duration == "5 Tage" &&
			b.Status == domain.BookingOpen &&
			*b.CourseID == 2 && *b.CourseDateID == 3
	})).Return(nil)
	m.ledger.On("Recompute", ctx, int64(999)).Return(&ledger.Result{BookingID: 999, Saldo: 500, Status: domain.BookingOpen, PreviousStatus: domain.BookingOpen}, nil)

	b, err := svc.CreateBooking(ctx, CreateBookingRequest{StudentID: 7, CourseDateID: i64(3), PartnerID: i64(4)})

	require.NoError(t, err)
	assert.Equal(t, int64(999), b.ID)
	assert.Equal(t, 500.0, b.Saldo)
	assert.Equal(t, start, *b.CourseStart)
	assert.Regexp(t, `^BK-\d{6}-[0-9A-F]{6}$`, b.Code)
	m.bookings.AssertExpectations(t)
	m.ledger.AssertExpectations(t)
}

func TestService_CreateBooking_ExplicitAmountWins(t *testing.T) {
	svc, m := newTestService()
	ctx := context.Background()

	m.users.On("GetByID", ctx, int64(7)).Return(&domain.User{ID: 7, Role: domain.RoleStudent}, nil)
	m.courses.On("GetByID", ctx, int64(2)).Return(&domain.Course{ID: 2, Title: "SAP", Price: f64(1200)}, nil)
	m.bookings.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return *b.Amount == 999.99 && b.VATRate == 7 && *b.NetPrice == 934.57
	})).Return(nil)
	m.ledger.On("Recompute", ctx, int64(999)).Return(&ledger.Result{Saldo: 999.99, Status: domain.BookingOpen}, nil)

	_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudentID: 7, CourseID: i64(2), Amount: f64(999.99), VATRate: f64(7)})
	require.NoError(t, err)
	m.bookings.AssertExpectations(t)
}

func TestService_CreateBooking_RetriesDuplicateCode(t *testing.T) {
	svc, m := newTestService()
	ctx := context.Background()

	m.users.On("GetByID", ctx, int64(7)).Return(&domain.User{ID: 7, Role: domain.RoleStudent}, nil)
	m.bookings.On("Create", ctx, mock.Anything).Return(&pgconn.PgError{Code: "23505"}).Once()
	m.bookings.On("Create", ctx, mock.Anything).Return(nil).Once()
	m.ledger.On("Recompute", ctx, int64(999)).Return(&ledger.Result{Status: domain.BookingOpen}, nil)

	_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudentID: 7})
	require.NoError(t, err)
	m.bookings.AssertNumberOfCalls(t, "Create", 2)
}

func TestService_CreateBooking_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown status", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudentID: 7, Status: "bezahlt"})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("student missing", func(t *testing.T) {
		svc, m := newTestService()
		m.users.On("GetByID", ctx, int64(7)).Return(nil, gorm.ErrRecordNotFound)
		_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudentID: 7})
		assert.ErrorIs(t, err, ErrStudentNotFound)
	})

	t.Run("user is not a student", func(t *testing.T) {
		svc, m := newTestService()
		m.users.On("GetByID", ctx, int64(7)).Return(&domain.User{ID: 7, Role: domain.RoleTeacher}, nil)
		_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudentID: 7})
		assert.ErrorIs(t, err, ErrStudentNotFound)
	})

	t.Run("course date of another course", func(t *testing.T) {
		svc, m := newTestService()
		m.users.On("GetByID", ctx, int64(7)).Return(&domain.User{ID: 7, Role: domain.RoleStudent}, nil)
		m.courses.On("GetDate", ctx, int64(3)).Return(&domain.CourseDate{ID: 3, CourseID: 2}, nil)
		_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudentID: 7, CourseDateID: i64(3), CourseID: i64(5)})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("partner missing", func(t *testing.T) {
		svc, m := newTestService()
		m.users.On("GetByID", ctx, int64(7)).Return(&domain.User{ID: 7, Role: domain.RoleStudent}, nil)
		m.partners.On("GetByID", ctx, int64(4)).Return(nil, gorm.ErrRecordNotFound)
		_, err := svc.CreateBooking(ctx, CreateBookingRequest{StudentID: 7, PartnerID: i64(4)})
		assert.ErrorIs(t, err, ErrPartnerNotFound)
	})
}

func TestService_GetBooking(t *testing.T) {
	svc, m := newTestService()
	ctx := context.Background()
	b := &domain.Booking{ID: 1, Amount: f64(500), Saldo: 300, PaidTotal: 200, Status: domain.BookingDepositReceived}

	m.bookings.On("GetByID", ctx, int64(1)).Return(b, nil)
	m.ledger.On("FillAmount", ctx, b).Return(nil)
	m.payments.On("ListByBooking", ctx, int64(1)).Return([]domain.Payment{{ID: 5, BookingID: 1, Amount: 200}}, nil)

	details, err := svc.GetBooking(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 300.0, details.OpenAmount)
	assert.Equal(t, 200.0, details.PaidTotal)
	assert.Len(t, details.Payments, 1)

	m.bookings.On("GetByID", ctx, int64(2)).Return(nil, gorm.ErrRecordNotFound)
	_, err = svc.GetBooking(ctx, 2)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_ListBookings(t *testing.T) {
	svc, m := newTestService()
	ctx := context.Background()
	rows := []domain.Booking{{ID: 1}, {ID: 2}}

	m.bookings.On("List", ctx, repository.BookingFilter{Status: domain.BookingCancelled, Limit: defaultListLimit}).Return(rows, int64(2), nil)
	m.ledger.On("FillAmounts", ctx, rows).Return(rows, nil)

	list, err := svc.ListBookings(ctx, ListBookingsQuery{Status: "Storno"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Len(t, list.Items, 2)

	_, err = svc.ListBookings(ctx, ListBookingsQuery{Status: "unbekannt"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestService_UpdateBooking_StatusTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected", func(t *testing.T) {
		svc, m := newTestService()
		m.bookings.On("GetByID", ctx, int64(1)).Return(&domain.Booking{ID: 1, Status: domain.BookingCompleted}, nil)

		status := string(domain.BookingOpen)
		_, err := svc.UpdateBooking(ctx, UpdateBookingRequest{ID: 1, Status: &status})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		m.bookings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, m := newTestService()
		m.bookings.On("GetByID", ctx, int64(1)).Return(&domain.Booking{ID: 1, Status: domain.BookingOpen}, nil)

		status := "bezahlt"
		_, err := svc.UpdateBooking(ctx, UpdateBookingRequest{ID: 1, Status: &status})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("cancel a paid booking without recompute", func(t *testing.T) {
		svc, m := newTestService()
		cur := &domain.Booking{ID: 1, Amount: f64(500), Status: domain.BookingCompleted}
		m.bookings.On("GetByID", ctx, int64(1)).Return(cur, nil)
		m.ledger.On("ChangeStatus", ctx, int64(1), domain.BookingCancelled, map[string]any{}, false).
			Return(&ledger.StatusChange{From: domain.BookingCompleted, To: domain.BookingCancelled}, nil)
		m.ledger.On("FillAmount", ctx, cur).Return(nil)
		m.payments.On("ListByBooking", ctx, int64(1)).Return([]domain.Payment{}, nil)

		status := string(domain.BookingCancelled)
		_, err := svc.UpdateBooking(ctx, UpdateBookingRequest{ID: 1, Status: &status})
		require.NoError(t, err)
		m.ledger.AssertExpectations(t)
		m.bookings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		m.ledger.AssertNotCalled(t, "UpdateAndRecompute", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("locked row rejects a stale transition", func(t *testing.T) {
		svc, m := newTestService()
		m.bookings.On("GetByID", ctx, int64(1)).Return(&domain.Booking{ID: 1, Amount: f64(500), Status: domain.BookingOpen}, nil)
		m.ledger.On("ChangeStatus", ctx, int64(1), domain.BookingPaymentReminder, map[string]any{"notes": "Erinnerung"}, false).
			Return(nil, ledger.ErrInvalidTransition)

		status := string(domain.BookingPaymentReminder)
		notes := "Erinnerung"
		_, err := svc.UpdateBooking(ctx, UpdateBookingRequest{ID: 1, Status: &status, Notes: &notes})
		assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		m.bookings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_UpdateBooking_AmountChangeRecomputes(t *testing.T) {
	svc, m := newTestService()
	ctx := context.Background()
	cur := &domain.Booking{ID: 1, Amount: f64(500), VATRate: 19, Status: domain.BookingDepositReceived}

	m.bookings.On("GetByID", ctx, int64(1)).Return(cur, nil)
	m.ledger.On("UpdateAndRecompute", ctx, int64(1), map[string]any{
		"amount":    400.0,
		"net_price": 336.13,
		"notes":     "Rabatt",
	}).Return(&ledger.Result{BookingID: 1, Saldo: 0, Status: domain.BookingCompleted}, nil)
	m.ledger.On("FillAmount", ctx, cur).Return(nil)
	m.payments.On("ListByBooking", ctx, int64(1)).Return([]domain.Payment{}, nil)

	notes := "Rabatt"
	_, err := svc.UpdateBooking(ctx, UpdateBookingRequest{ID: 1, Amount: f64(400), Notes: &notes})
	require.NoError(t, err)
	m.ledger.AssertExpectations(t)
	m.bookings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateBooking_ClearPartner(t *testing.T) {
	svc, m := newTestService()
	ctx := context.Background()
	cur := &domain.Booking{ID: 1, Amount: f64(500), Status: domain.BookingOpen, PartnerID: i64(4), PartnerName: "Alt"}

	m.bookings.On("GetByID", ctx, int64(1)).Return(cur, nil)
	m.bookings.On("Update", ctx, int64(1), map[string]any{"partner_id": nil, "partner_name": ""}).Return(nil)
	m.ledger.On("FillAmount", ctx, cur).Return(nil)
	m.payments.On("ListByBooking", ctx, int64(1)).Return([]domain.Payment{}, nil)

	_, err := svc.UpdateBooking(ctx, UpdateBookingRequest{ID: 1, PartnerID: i64(0)})
	require.NoError(t, err)
	m.bookings.AssertExpectations(t)
}

func TestService_DeleteBooking(t *testing.T) {
	svc, m := newTestService()
	ctx := context.Background()

	m.bookings.On("Delete", ctx, int64(1)).Return(nil)
	m.bookings.On("Delete", ctx, int64(2)).Return(gorm.ErrRecordNotFound)

	require.NoError(t, svc.DeleteBooking(ctx, 1))
	assert.ErrorIs(t, svc.DeleteBooking(ctx, 2), ErrBookingNotFound)
}

func TestRenderXLSX(t *testing.T) {
	start := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	data, err := renderXLSX([]domain.Booking{
		{Code: "BK-250505-AAAAAA", BookingDate: start, Amount: f64(500), NetPrice: f64(420.17), CourseStart: &start, Status: domain.BookingOpen},
		{Code: "BK-250505-BBBBBB", BookingDate: start, Status: domain.BookingOpen},
	})
	require.NoError(t, err)
	// xlsx is a zip archive
	require.Greater(t, len(data), 4)
	assert.Equal(t, []byte("PK"), data[:2])
}
