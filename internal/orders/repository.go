package orders

import (
	"context"
	"time"

	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
)

// Repository is the order store. Implementations return db.ErrNotFound for
// missing orders and db.ErrStaleVersion when an update loses the version race.
type Repository interface {
	Create(ctx context.Context, order *models.Order) error
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	Update(ctx context.Context, id string, expectedVersion int, patch Patch) (*models.Order, error)
	Delete(ctx context.Context, id string) error
}

// Patch lists the mutable order fields. Items and totals never change after creation.
type Patch struct {
	Status   *enums.OrderStatus
	Customer *models.Customer
}

func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.Customer == nil
}

// applyPatch merges p into order and bumps the revision. A status change is
// mirrored onto every item.
func applyPatch(order *models.Order, p Patch, now time.Time) {
	if p.Status != nil {
		order.Status = *p.Status
		for i := range order.Items {
			order.Items[i].Status = *p.Status
		}
	}
	if p.Customer != nil {
		order.Customer = *p.Customer
	}
	order.Version++
	order.UpdatedAt = now
}
