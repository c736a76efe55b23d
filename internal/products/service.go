package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ezoostore/storefront-backend/internal/media"
	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

// Service exposes the public catalog and admin product management.
type Service interface {
	List(ctx context.Context, category string) ([]ProductDTO, error)
	Get(ctx context.Context, id string) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id string) error
}

type productStore interface {
	List(ctx context.Context, category string) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

type imageHost interface {
	UploadDataURI(ctx context.Context, folder, dataURI string) (media.Asset, error)
	DeleteURL(ctx context.Context, url string) error
	IsHosted(url string) bool
}

type service struct {
	repo        productStore
	media       imageHost
	logg        *logger.Logger
	imageFolder string
}

// NewService constructs a product service instance.
func NewService(repo productStore, host imageHost, logg *logger.Logger, imageFolder string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if host == nil {
		return nil, fmt.Errorf("media service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if imageFolder == "" {
		imageFolder = "products"
	}
	return &service{repo: repo, media: host, logg: logg, imageFolder: imageFolder}, nil
}

func (s *service) List(ctx context.Context, category string) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	dto := FromModel(*product)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if input.Price <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Discount < 0 || input.Discount > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
	}

	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Discount:    input.Discount,
		Category:    strings.ToLower(strings.TrimSpace(input.Category)),
		ImageURL:    strings.TrimSpace(input.ImageURL),
	}
	if product.Name == "" || product.Description == "" || product.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, description and category are required")
	}

	uploaded := false
	if input.Image != "" {
		asset, err := s.media.UploadDataURI(ctx, s.imageFolder, input.Image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = asset.URL
		uploaded = true
	}
	if product.ImageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "an image or imageUrl is required")
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if uploaded {
			s.dropImage(ctx, product.ImageURL)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}

	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID), "product.created")
	dto := FromModel(*product)
	return &dto, nil
}

// Delete removes the product, then its hosted image on a best-effort basis.
func (s *service) Delete(ctx context.Context, id string) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	s.dropImage(ctx, product.ImageURL)
	s.logg.Info(s.logg.WithField(ctx, "product_id", id), "product.deleted")
	return nil
}

func (s *service) dropImage(ctx context.Context, url string) {
	if url == "" || !s.media.IsHosted(url) {
		return
	}
	if err := s.media.DeleteURL(ctx, url); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "image_url", url), fmt.Sprintf("products.image_cleanup_failed: %v", err))
	}
}
