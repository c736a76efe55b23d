package products

import (
	"context"
	"strings"

	"github.com/ezoostore/storefront-backend/internal/repo"
	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists catalog products.
type Repository struct {
	base repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(conn)}
}

// List returns products newest first. An empty category lists everything.
func (r *Repository) List(ctx context.Context, category string) ([]models.Product, error) {
	q := r.base.DB(ctx).Model(&models.Product{})
	if category = strings.TrimSpace(category); category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	var rows []models.Product
	if err := repo.Newest(q).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.base.DB(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, db.NormalizeNotFound(err)
	}
	return &product, nil
}

// FindByIDs loads the given products keyed by id. Unknown ids are absent from the map.
func (r *Repository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.base.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.base.DB(ctx).Create(product).Error
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}
