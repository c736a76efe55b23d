package attributes

import (
	"context"

	"github.com/ezoostore/storefront-backend/internal/repo"
	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists attributes through gorm.
type Repository struct {
	base repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(conn)}
}

// List returns attributes newest first, optionally filtered by kind.
func (r *Repository) List(ctx context.Context, kind enums.AttributeKind) ([]models.Attribute, error) {
	q := r.base.DB(ctx).Model(&models.Attribute{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var rows []models.Attribute
	if err := repo.Newest(q).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.Attribute, error) {
	var attr models.Attribute
	if err := r.base.DB(ctx).Where("id = ?", id).First(&attr).Error; err != nil {
		return nil, db.NormalizeNotFound(err)
	}
	return &attr, nil
}

func (r *Repository) Create(ctx context.Context, attr *models.Attribute) error {
	return r.base.DB(ctx).Create(attr).Error
}

func (r *Repository) Update(ctx context.Context, attr *models.Attribute) error {
	res := r.base.DB(ctx).Model(&models.Attribute{}).
		Where("id = ?", attr.ID).
		Updates(map[string]any{
			"value":    attr.Value,
			"logo_url": attr.LogoURL,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.base.DB(ctx).Where("id = ?", id).Delete(&models.Attribute{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}
