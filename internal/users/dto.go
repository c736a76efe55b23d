package users

import (
	"time"

	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Role         enums.UserRole `json:"role"`
	Image        *string        `json:"image"`
	LoginCount   int            `json:"loginCount"`
	LastLogin    *time.Time     `json:"lastLogin,omitempty"`
	LoginHistory []string       `json:"loginHistory"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// UpdateProfileRequest is the PATCH /me body; nil fields are left alone.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" validate:"omitempty,min=6,max=20"`
	Image *string `json:"image" validate:"omitempty,url"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	var image *string
	if u.Image != "" {
		img := u.Image
		image = &img
	}
	history := append([]string{}, u.LoginHistory...)

	return &UserDTO{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		Image:        image,
		LoginCount:   u.LoginCount,
		LastLogin:    u.LastLoginAt,
		LoginHistory: history,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
