package models

import (
	"time"

	"github.com/ezoostore/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attribute is a selectable size, color or preset logo.
type Attribute struct {
	ID        string              `gorm:"type:uuid;primaryKey"`
	Kind      enums.AttributeKind `gorm:"column:kind;not null;index"`
	Value     string              `gorm:"column:value"`
	LogoURL   string              `gorm:"column:logo_url"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Attribute) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
