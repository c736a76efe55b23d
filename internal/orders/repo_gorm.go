package orders

import (
	"context"
	"time"

	"github.com/ezoostore/storefront-backend/internal/repo"
	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

var updatableColumns = []string{
	"items",
	"status",
	"customer_name",
	"customer_email",
	"customer_phone",
	"customer_governorate",
	"customer_address",
	"version",
	"updated_at",
}

// SQLRepository stores orders in postgres (or sqlite in dev) through gorm.
type SQLRepository struct {
	base repo.Base
}

func NewSQLRepository(conn *gorm.DB) *SQLRepository {
	return &SQLRepository{base: repo.NewBase(conn)}
}

func (r *SQLRepository) Create(ctx context.Context, order *models.Order) error {
	return r.base.DB(ctx).Create(order).Error
}

func (r *SQLRepository) List(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	if err := repo.Newest(r.base.DB(ctx).Model(&models.Order{})).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SQLRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var rows []models.Order
	q := r.base.DB(ctx).Model(&models.Order{}).Where("user_id = ?", userID)
	if err := repo.Newest(q).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.base.DB(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, db.NormalizeNotFound(err)
	}
	return &order, nil
}

// Update loads the order, checks the expected version and writes the merged
// record guarded by the same version.
func (r *SQLRepository) Update(ctx context.Context, id string, expectedVersion int, patch Patch) (*models.Order, error) {
	var updated models.Order
	err := r.base.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return db.NormalizeNotFound(err)
		}
		if updated.Version != expectedVersion {
			return db.ErrStaleVersion
		}
		applyPatch(&updated, patch, time.Now().UTC())

		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", id, expectedVersion).
			Select(updatableColumns).
			Updates(&updated)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return db.ErrStaleVersion
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}
