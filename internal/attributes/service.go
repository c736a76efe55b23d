package attributes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ezoostore/storefront-backend/internal/media"
	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	redislib "github.com/redis/go-redis/v9"
)

// Service exposes the attribute catalog to shoppers and admins.
type Service interface {
	List(ctx context.Context, kind string) ([]AttributeDTO, error)
	Get(ctx context.Context, id string) (*AttributeDTO, error)
	Options(ctx context.Context) (Options, error)
	Create(ctx context.Context, input CreateInput) (*AttributeDTO, error)
	Update(ctx context.Context, id string, input UpdateInput) (*AttributeDTO, error)
	Delete(ctx context.Context, id string) error
}

type attributeStore interface {
	List(ctx context.Context, kind enums.AttributeKind) ([]models.Attribute, error)
	FindByID(ctx context.Context, id string) (*models.Attribute, error)
	Create(ctx context.Context, attr *models.Attribute) error
	Update(ctx context.Context, attr *models.Attribute) error
	Delete(ctx context.Context, id string) error
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

type logoHost interface {
	UploadDataURI(ctx context.Context, folder, dataURI string) (media.Asset, error)
	DeleteURL(ctx context.Context, url string) error
	IsHosted(url string) bool
}

type ServiceParams struct {
	Repo       attributeStore
	Cache      cacheStore
	Media      logoHost
	Logger     *logger.Logger
	CacheTTL   time.Duration
	LogoFolder string
}

type service struct {
	repo       attributeStore
	cache      cacheStore
	media      logoHost
	logg       *logger.Logger
	ttl        time.Duration
	logoFolder string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("attribute repository required")
	}
	if params.Media == nil {
		return nil, fmt.Errorf("media service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	folder := params.LogoFolder
	if folder == "" {
		folder = "admin-logos"
	}
	return &service{
		repo:       params.Repo,
		cache:      params.Cache,
		media:      params.Media,
		logg:       params.Logger,
		ttl:        params.CacheTTL,
		logoFolder: folder,
	}, nil
}

func (s *service) List(ctx context.Context, kind string) ([]AttributeDTO, error) {
	var filter enums.AttributeKind
	if strings.TrimSpace(kind) != "" {
		parsed, err := enums.ParseAttributeKind(kind)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid attribute kind")
		}
		filter = parsed
	}

	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return all, nil
	}
	out := make([]AttributeDTO, 0, len(all))
	for _, a := range all {
		if a.Kind == filter {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string) (*AttributeDTO, error) {
	attr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "attribute not found", "load attribute")
	}
	dto := FromModel(*attr)
	return &dto, nil
}

func (s *service) Options(ctx context.Context) (Options, error) {
	all, err := s.all(ctx)
	if err != nil {
		return Options{}, err
	}
	return newOptions(all), nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*AttributeDTO, error) {
	kind, err := enums.ParseAttributeKind(input.Kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid attribute kind")
	}

	attr := &models.Attribute{Kind: kind, Value: strings.TrimSpace(input.Value)}
	switch kind {
	case enums.AttributeKindSize, enums.AttributeKindColor:
		if attr.Value == "" {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s attributes need a value", kind)
		}
	case enums.AttributeKindLogo:
		if input.LogoData == "" && input.LogoURL == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "logo attributes need a file or logoUrl")
		}
	}

	uploaded := ""
	if kind == enums.AttributeKindLogo {
		attr.LogoURL = input.LogoURL
		if input.LogoData != "" {
			asset, err := s.media.UploadDataURI(ctx, s.logoFolder, input.LogoData)
			if err != nil {
				return nil, err
			}
			attr.LogoURL = asset.URL
			uploaded = asset.URL
		}
	}

	if err := s.repo.Create(ctx, attr); err != nil {
		if uploaded != "" {
			s.dropLogo(ctx, uploaded)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create attribute")
	}
	s.invalidate(ctx)

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"attribute_id": attr.ID, "kind": kind}), "attribute.created")
	dto := FromModel(*attr)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*AttributeDTO, error) {
	attr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "attribute not found", "load attribute")
	}
	oldLogo := attr.LogoURL

	if input.Value != nil {
		attr.Value = strings.TrimSpace(*input.Value)
		if attr.Kind != enums.AttributeKindLogo && attr.Value == "" {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s attributes need a value", attr.Kind)
		}
	}

	uploaded := ""
	switch {
	case input.LogoData != nil && *input.LogoData != "":
		if attr.Kind != enums.AttributeKindLogo {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "only logo attributes carry an image")
		}
		asset, err := s.media.UploadDataURI(ctx, s.logoFolder, *input.LogoData)
		if err != nil {
			return nil, err
		}
		attr.LogoURL = asset.URL
		uploaded = asset.URL
	case input.LogoURL != nil:
		if attr.Kind != enums.AttributeKindLogo && *input.LogoURL != "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "only logo attributes carry an image")
		}
		attr.LogoURL = *input.LogoURL
	}

	if err := s.repo.Update(ctx, attr); err != nil {
		if uploaded != "" {
			s.dropLogo(ctx, uploaded)
		}
		return nil, mapRepoError(err, "attribute not found", "update attribute")
	}
	s.invalidate(ctx)

	if oldLogo != "" && oldLogo != attr.LogoURL {
		s.dropLogo(ctx, oldLogo)
	}

	dto := FromModel(*attr)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	attr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapRepoError(err, "attribute not found", "load attribute")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "attribute not found", "delete attribute")
	}
	s.invalidate(ctx)

	if attr.Kind == enums.AttributeKindLogo && attr.LogoURL != "" {
		s.dropLogo(ctx, attr.LogoURL)
	}
	return nil
}

// all serves the full catalog from the cache, falling back to the database.
func (s *service) all(ctx context.Context) ([]AttributeDTO, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, s.cacheKey())
		switch {
		case err == nil:
			var cached []AttributeDTO
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return cached, nil
			}
		case !errors.Is(err, redislib.Nil):
			s.logg.Warn(ctx, fmt.Sprintf("attributes.cache_read_failed: %v", err))
		}
	}

	rows, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list attributes")
	}
	out := make([]AttributeDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, s.cacheKey(), string(payload), s.ttl); err != nil {
				s.logg.Warn(ctx, fmt.Sprintf("attributes.cache_write_failed: %v", err))
			}
		}
	}
	return out, nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.cacheKey()); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("attributes.cache_invalidate_failed: %v", err))
	}
}

func (s *service) cacheKey() string {
	return s.cache.CacheKey("attributes", "all")
}

// dropLogo removes a hosted logo. Failures are logged and never surface.
func (s *service) dropLogo(ctx context.Context, url string) {
	if !s.media.IsHosted(url) {
		return
	}
	if err := s.media.DeleteURL(ctx, url); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "logo_url", url), fmt.Sprintf("attributes.logo_cleanup_failed: %v", err))
	}
}

func mapRepoError(err error, notFoundMsg, op string) error {
	if errors.Is(err, db.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

func normalizeOption(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
