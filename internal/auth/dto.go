package auth

import (
	"github.com/agromart/agromart-backend/internal/users"
	"github.com/agromart/agromart-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the public sign-up payload. Role defaults to customer.
type RegisterRequest struct {
	Email    string     `json:"email" validate:"required,email,max=255"`
	Password string     `json:"password" validate:"required,min=8,max=128"`
	Name     string     `json:"name" validate:"required,max=120"`
	Phone    *string    `json:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	Role     enums.Role `json:"role,omitempty"`
}

// AuthResponse carries the issued access token and the signed-in user.
type AuthResponse struct {
	AccessToken string         `json:"accessToken"`
	TokenType   string         `json:"tokenType"`
	ExpiresIn   int            `json:"expiresIn"`
	User        *users.UserDTO `json:"user"`
}
