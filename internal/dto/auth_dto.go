package dto

import (
	"time"

	"github.com/nivora-labs/bootcamp-api/internal/models"
)

// RegisterRequest describes the payload for self-service student signup.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest describes the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateUserRequest is used by admins to provision accounts with a role.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=student instructor admin"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:          model.ID,
		Name:        model.Name,
		Email:       model.Email,
		Role:        model.Role,
		LastLoginAt: model.LastLoginAt,
		CreatedAt:   model.CreatedAt,
	}
}
