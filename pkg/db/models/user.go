package models

import (
	"time"

	"github.com/ezoostore/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a storefront shopper or administrator.
type User struct {
	ID           string         `gorm:"type:uuid;primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	Phone        string         `gorm:"column:phone;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;not null;default:user"`
	Image        string         `gorm:"column:image"`
	LoginCount   int            `gorm:"column:login_count;not null;default:0"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	LoginHistory []string       `gorm:"column:login_history;serializer:json"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = enums.UserRoleUser
	}
	return nil
}
