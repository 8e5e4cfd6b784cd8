package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"coursedesk/internal/database/sqlitetest"
	"coursedesk/internal/domain"
	"coursedesk/internal/pkg/jwt"
	"coursedesk/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func TestService_Register_Success(t *testing.T) {
	userRepo := new(mockUserRepo)
	jwtSvc := new(mockJWTService)

	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "anna@example.com" && u.Role == domain.RoleStudent && u.PasswordHash != "securepass123"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 3
	}).Return(nil)
	jwtSvc.On("GenerateToken", int64(3), "student").Return("fake-jwt-token", nil)

	service := NewService(userRepo, jwtSvc)
	res, err := service.Register(context.Background(), RegisterRequest{
		Name:     "Anna",
		Email:    " Anna@Example.com ",
		Password: "securepass123",
	})

	require.NoError(t, err)
	assert.Equal(t, "fake-jwt-token", res.Token)
	assert.Equal(t, domain.RoleStudent, res.User.Role)
	userRepo.AssertExpectations(t)
	jwtSvc.AssertExpectations(t)
}

func TestService_Register_PropagatesStoreError(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := NewService(userRepo, new(mockJWTService)).Register(context.Background(), RegisterRequest{
		Name: "A", Email: "a@example.com", Password: "securepass123",
	})
	assert.EqualError(t, err, "disk full")
}

func TestService_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	existing := &domain.User{ID: 10, Email: "user@example.com", PasswordHash: string(hashed), Role: domain.RoleTeacher}

	userRepo := new(mockUserRepo)
	userRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(existing, nil)
	userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
	jwtSvc := new(mockJWTService)
	jwtSvc.On("GenerateToken", int64(10), "teacher").Return("login-token", nil)

	service := NewService(userRepo, jwtSvc)

	res, err := service.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "login-token", res.Token)

	_, err = service.Login(context.Background(), LoginRequest{Email: "user@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_RegisterDuplicateEmail_SQLite(t *testing.T) {
	db := sqlitetest.Open(t)
	service := NewService(repository.NewUserRepository(db), jwt.New("secret", time.Hour))

	req := RegisterRequest{Name: "Ben", Email: "ben@example.com", Password: "password123"}
	_, err := service.Register(context.Background(), req)
	require.NoError(t, err)

	req.Email = "BEN@example.com"
	_, err = service.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestService_UpdateProfile(t *testing.T) {
	db := sqlitetest.Open(t)
	service := NewService(repository.NewUserRepository(db), jwt.New("secret", time.Hour))

	res, err := service.Register(context.Background(), RegisterRequest{Name: "Cem", Email: "cem@example.com", Password: "password123"})
	require.NoError(t, err)

	user, err := service.UpdateProfile(context.Background(), res.User.ID, UpdateProfileRequest{Phone: "+49 30 123"})
	require.NoError(t, err)
	assert.Equal(t, "Cem", user.Name)
	assert.Equal(t, "+49 30 123", user.Phone)

	_, err = service.GetCurrentUser(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_CreateAndListUsers(t *testing.T) {
	db := sqlitetest.Open(t)
	service := NewService(repository.NewUserRepository(db), jwt.New("secret", time.Hour))
	ctx := context.Background()

	teacher, err := service.CreateUser(ctx, CreateUserRequest{Name: "Frau Weber", Email: "Weber@Example.com", Role: "teacher", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTeacher, teacher.Role)
	assert.Equal(t, "weber@example.com", teacher.Email)

	_, err = service.CreateUser(ctx, CreateUserRequest{Name: "Dora", Email: "dora@example.com", Role: "student", Password: "password123"})
	require.NoError(t, err)

	_, err = service.CreateUser(ctx, CreateUserRequest{Name: "X", Email: "x@example.com", Role: "owner", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = service.CreateUser(ctx, CreateUserRequest{Name: "Dup", Email: "dora@example.com", Role: "student", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	students, err := service.ListUsers(ctx, "student")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Dora", students[0].Name)

	everyone, err := service.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, everyone, 2)

	_, err = service.ListUsers(ctx, "guest")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
