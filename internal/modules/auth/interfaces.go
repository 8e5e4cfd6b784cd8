package auth

import (
	"context"

	"coursedesk/internal/domain"
)

// UserRepositoryInterface lists the user store methods the auth service uses.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error)
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}
