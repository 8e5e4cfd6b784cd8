package auth

import "coursedesk/internal/domain"

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty" binding:"omitempty,min=2"`
	Phone string `json:"phone,omitempty"`
}

// CreateUserRequest is used by admins to add teachers, students or admins.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required,oneof=admin teacher student"`
	Password string `json:"password" binding:"required,min=8"`
}

type UserPublic struct {
	ID    int64           `json:"id"`
	Role  domain.UserRole `json:"role"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Phone string          `json:"phone,omitempty"`
}

func toPublic(u *domain.User) UserPublic {
	return UserPublic{ID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User  UserPublic `json:"user"`
	Token string     `json:"token"`
}
