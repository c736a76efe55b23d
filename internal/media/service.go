package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/ezoostore/storefront-backend/pkg/config"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	"github.com/ezoostore/storefront-backend/pkg/storage/gcs"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// ObjectStore is the image host surface; *gcs.Client implements it.
type ObjectStore interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, objectName string) error
	ObjectFromURL(raw string) (string, bool)
}

// Asset is an uploaded image.
type Asset struct {
	URL         string `json:"url"`
	Object      string `json:"object"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// Service validates and stores images on the image host.
type Service struct {
	store    ObjectStore
	maxBytes int64
	logg     *logger.Logger
}

func NewService(store ObjectStore, cfg config.MediaConfig, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{store: store, maxBytes: cfg.MaxUploadBytes(), logg: logg}, nil
}

// UploadDataURI decodes an inline image, checks its size and content type,
// and stores it under folder with a random name.
func (s *Service) UploadDataURI(ctx context.Context, folder, dataURI string) (Asset, error) {
	declared, data, err := DecodeDataURI(dataURI)
	if err != nil {
		return Asset{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return Asset{}, pkgerrors.Newf(pkgerrors.CodeValidation, "image exceeds %d bytes", s.maxBytes)
	}
	contentType, ext, err := sniffImage(declared, data)
	if err != nil {
		return Asset{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	}

	object := path.Join(strings.Trim(folder, "/"), uuid.NewString()+ext)
	url, err := s.store.Upload(ctx, object, contentType, data)
	if err != nil {
		return Asset{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "image upload failed")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"object": object, "bytes": len(data)}), "media.uploaded")
	return Asset{URL: url, Object: object, ContentType: contentType, Size: len(data)}, nil
}

// IsHosted reports whether url points at an object in our bucket.
func (s *Service) IsHosted(url string) bool {
	_, ok := s.store.ObjectFromURL(url)
	return ok
}

// InFolder reports whether url is hosted under the given folder.
func (s *Service) InFolder(url, folder string) bool {
	object, ok := s.store.ObjectFromURL(url)
	if !ok {
		return false
	}
	return strings.HasPrefix(object, strings.Trim(folder, "/")+"/")
}

// DeleteURL removes the hosted object behind url. URLs outside the bucket are ignored.
func (s *Service) DeleteURL(ctx context.Context, url string) error {
	object, ok := s.store.ObjectFromURL(url)
	if !ok {
		return nil
	}
	if err := s.store.Delete(ctx, object); err != nil && !errors.Is(err, gcs.ErrObjectNotFound) {
		return fmt.Errorf("delete %s: %w", object, err)
	}
	return nil
}

// DeleteAll issues exactly one delete per distinct hosted URL and keeps going
// past failures. It returns the number of failed deletes and their combined error.
func (s *Service) DeleteAll(ctx context.Context, urls []string) (int, error) {
	var errs error
	failed := 0
	seen := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		object, ok := s.store.ObjectFromURL(url)
		if !ok {
			continue
		}
		if _, dup := seen[object]; dup {
			continue
		}
		seen[object] = struct{}{}
		if err := s.store.Delete(ctx, object); err != nil && !errors.Is(err, gcs.ErrObjectNotFound) {
			failed++
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", object, err))
		}
	}
	return failed, errs
}

// Cleanup is DeleteAll for best-effort paths: failures are logged, never returned.
func (s *Service) Cleanup(ctx context.Context, reason string, urls []string) int {
	failed, err := s.DeleteAll(ctx, urls)
	if err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"reason": reason, "failed": failed})
		s.logg.Warn(ctx, fmt.Sprintf("media.cleanup_failed: %v", err))
	}
	return failed
}
