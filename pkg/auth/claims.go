package auth

import (
	"fmt"
	"strings"

	"github.com/ezoostore/storefront-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload is what the auth service knows when it mints a token.
type AccessTokenPayload struct {
	UserID   string
	Role     enums.UserRole
	DeviceID string
	JTI      string
}

func (p AccessTokenPayload) validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return fmt.Errorf("user id is required")
	}
	if !p.Role.IsValid() {
		return fmt.Errorf("invalid user role %q", p.Role)
	}
	return nil
}

// AccessTokenClaims is the JWT body handed to storefront clients. The JTI
// (RegisteredClaims.ID) doubles as the access session id.
type AccessTokenClaims struct {
	UserID   string         `json:"user_id"`
	Role     enums.UserRole `json:"role"`
	DeviceID string         `json:"device_id,omitempty"`
	jwt.RegisteredClaims
}
