package products

import (
	"time"

	"github.com/ezoostore/storefront-backend/internal/pricing"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
)

// ProductDTO is the catalog API shape. DiscountedPrice is precomputed for the gallery.
type ProductDTO struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           int64     `json:"price"`
	Discount        int       `json:"discount"`
	DiscountedPrice int64     `json:"discountedPrice"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"imageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func FromModel(m models.Product) ProductDTO {
	return ProductDTO{
		ID:              m.ID,
		Name:            m.Name,
		Description:     m.Description,
		Price:           m.Price,
		Discount:        m.Discount,
		DiscountedPrice: pricing.DiscountedUnitPrice(m.Price, m.Discount),
		Category:        m.Category,
		ImageURL:        m.ImageURL,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// CreateProductInput is the admin payload. The image is either an existing
// URL or an inline data URI uploaded on create.
type CreateProductInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	Discount    int    `json:"discount" validate:"gte=0,lte=100"`
	Category    string `json:"category" validate:"required,max=64"`
	ImageURL    string `json:"imageUrl" validate:"required_without=Image"`
	Image       string `json:"image" validate:"required_without=ImageURL"`
}
