package orders

import (
	"time"

	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
)

// CustomerInput is the shipping contact submitted at checkout.
type CustomerInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Governorate string `json:"governorate"`
	Address     string `json:"address"`
}

// OrderItemRequest is one entry of the items[] order body. Logo and BackLogo
// hold either an inline data URI upload or a preset logo URL.
type OrderItemRequest struct {
	ProductID *string `json:"productId"`
	Name      string  `json:"name"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Quantity  int     `json:"quantity"`
	Price     int64   `json:"price"`
	ImageURL  string  `json:"imageUrl"`
	Logo      string  `json:"logo"`
	BackLogo  string  `json:"backLogo"`
}

// CreateOrderRequest accepts both the items[] body and the older single-item
// body where size, color, price and logo sit at the top level. Shipping,
// total, status and every client price are ignored.
type CreateOrderRequest struct {
	Items    []OrderItemRequest `json:"items"`
	Customer CustomerInput      `json:"customer"`
	UserID   string             `json:"userId"`
	Coupon   string             `json:"coupon"`
	Shipping *int64             `json:"shipping"`
	Total    *int64             `json:"total"`
	Status   string             `json:"status"`

	ProductID       *string `json:"productId"`
	Name            string  `json:"name"`
	Size            string  `json:"size"`
	Color           string  `json:"color"`
	Price           int64   `json:"price"`
	DiscountedPrice *int64  `json:"discountedPrice"`
	Quantity        int     `json:"quantity"`
	ImageURL        string  `json:"imageUrl"`
	Logo            string  `json:"logo"`
	BackLogo        string  `json:"backLogo"`
}

// UpdateOrderRequest is the admin partial update. Version, when set, must
// match the stored revision.
type UpdateOrderRequest struct {
	Status   *string        `json:"status"`
	Customer *CustomerInput `json:"customer"`
	Version  *int           `json:"version"`
}

type OrderItemDTO struct {
	ProductID       *string           `json:"productId"`
	Name            string            `json:"name"`
	Size            string            `json:"size"`
	Color           string            `json:"color"`
	Quantity        int               `json:"quantity"`
	Price           int64             `json:"price"`
	DiscountedPrice int64             `json:"discountedPrice"`
	ImageURL        string            `json:"imageUrl"`
	BackImageURL    string            `json:"backImageUrl,omitempty"`
	Status          enums.OrderStatus `json:"status"`
}

type OrderDTO struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user"`
	Items     []OrderItemDTO    `json:"items"`
	Subtotal  int64             `json:"subtotal"`
	Discount  int64             `json:"discount"`
	Coupon    string            `json:"coupon"`
	Shipping  int64             `json:"shipping"`
	Total     int64             `json:"total"`
	Status    enums.OrderStatus `json:"status"`
	Customer  models.Customer   `json:"customer"`
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// FromModel maps the stored order onto its API shape. Hosted asset bookkeeping
// stays internal.
func FromModel(o models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:       item.ProductID,
			Name:            item.Name,
			Size:            item.Size,
			Color:           item.Color,
			Quantity:        item.Quantity,
			Price:           item.Price,
			DiscountedPrice: item.DiscountedPrice,
			ImageURL:        item.ImageURL,
			BackImageURL:    item.BackImageURL,
			Status:          item.Status,
		})
	}
	return OrderDTO{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     items,
		Subtotal:  o.Subtotal,
		Discount:  o.Discount,
		Coupon:    o.Coupon,
		Shipping:  o.Shipping,
		Total:     o.Total,
		Status:    o.Status,
		Customer:  o.Customer,
		Version:   o.Version,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func fromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
