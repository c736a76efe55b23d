package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a ready-made catalog shirt. Prices are whole currency units.
type Product struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description;not null"`
	Price       int64     `gorm:"column:price;not null"`
	Discount    int       `gorm:"column:discount;not null;default:0"`
	Category    string    `gorm:"column:category;not null;index"`
	ImageURL    string    `gorm:"column:image_url;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
