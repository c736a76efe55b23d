package models

import (
	"time"

	"github.com/ezoostore/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the shipping contact captured at checkout.
type Customer struct {
	Name        string `gorm:"column:name" bson:"name" json:"name"`
	Email       string `gorm:"column:email" bson:"email" json:"email"`
	Phone       string `gorm:"column:phone" bson:"phone" json:"phone"`
	Governorate string `gorm:"column:governorate" bson:"governorate" json:"governorate"`
	Address     string `gorm:"column:address" bson:"address" json:"address"`
}

// OrderItem is one line of an order; ProductID is nil for fully custom shirts.
type OrderItem struct {
	ProductID       *string           `bson:"productId,omitempty" json:"productId,omitempty"`
	Name            string            `bson:"name" json:"name"`
	Size            string            `bson:"size" json:"size"`
	Color           string            `bson:"color" json:"color"`
	Quantity        int               `bson:"quantity" json:"quantity"`
	Price           int64             `bson:"price" json:"price"`
	DiscountedPrice int64             `bson:"discountedPrice" json:"discountedPrice"`
	ImageURL        string            `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	BackImageURL    string            `bson:"backImageUrl,omitempty" json:"backImageUrl,omitempty"`
	Status          enums.OrderStatus `bson:"status" json:"status"`
}

// LineTotal is the discounted unit price times quantity.
func (i OrderItem) LineTotal() int64 {
	return i.DiscountedPrice * int64(i.Quantity)
}

// Order is the persisted checkout record. Totals are fixed at creation.
type Order struct {
	ID           string            `gorm:"type:uuid;primaryKey" bson:"_id"`
	UserID       string            `gorm:"column:user_id;type:uuid;not null;index" bson:"user"`
	Items        []OrderItem       `gorm:"column:items;serializer:json;not null" bson:"items"`
	Subtotal     int64             `gorm:"column:subtotal;not null" bson:"subtotal"`
	Discount     int64             `gorm:"column:discount;not null" bson:"discount"`
	Coupon       string            `gorm:"column:coupon;not null" bson:"coupon"`
	Shipping     int64             `gorm:"column:shipping;not null" bson:"shipping"`
	Total        int64             `gorm:"column:total;not null" bson:"total"`
	Status       enums.OrderStatus `gorm:"column:status;not null" bson:"status"`
	Customer     Customer          `gorm:"embedded;embeddedPrefix:customer_" bson:"customer"`
	HostedAssets []string          `gorm:"column:hosted_assets;serializer:json" bson:"hostedAssets,omitempty"`
	Version      int               `gorm:"column:version;not null;default:1" bson:"version"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" bson:"createdAt"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime" bson:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Version == 0 {
		o.Version = 1
	}
	return nil
}
