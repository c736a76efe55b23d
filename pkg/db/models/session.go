package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session links a user to the token issued for one of their devices.
type Session struct {
	ID          string     `gorm:"type:uuid;primaryKey"`
	UserID      string     `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_sessions_user_device"`
	DeviceID    string     `gorm:"column:device_id;not null;uniqueIndex:idx_sessions_user_device"`
	TokenID     string     `gorm:"column:token_id"`
	UserAgent   string     `gorm:"column:user_agent"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt time.Time  `gorm:"column:last_login_at"`
	RevokedAt   *time.Time `gorm:"column:revoked_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Session) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
