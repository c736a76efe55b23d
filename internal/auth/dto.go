package auth

import (
	"time"

	"github.com/ezoostore/storefront-backend/internal/users"
)

// SignupRequest is the body of the signup and admin register endpoints.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"required,min=6,max=20"`
	DeviceID string `json:"deviceId" validate:"omitempty,max=128"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	DeviceID string `json:"deviceId" validate:"required,max=128"`
}

// RefreshRequest carries the (possibly expired) access token and its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ClientMeta is request metadata stored on the device session.
type ClientMeta struct {
	UserAgent string
}

// AuthResponse is returned by signup, login and refresh.
type AuthResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresAt    time.Time      `json:"expiresAt"`
	SessionID    string         `json:"sessionId,omitempty"`
	DeviceID     string         `json:"deviceId"`
	User         *users.UserDTO `json:"user"`
}
