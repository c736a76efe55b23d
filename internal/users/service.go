package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
)

// Service serves profile reads and edits plus the admin user listing.
type Service interface {
	Me(ctx context.Context, userID string) (*UserDTO, error)
	UpdateMe(ctx context.Context, userID string, req UpdateProfileRequest) (*UserDTO, error)
	List(ctx context.Context) ([]UserDTO, error)
}

type userStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, updates map[string]any) (*models.User, error)
}

type service struct {
	repo userStore
}

func NewService(repo userStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Me(ctx context.Context, userID string) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateMe(ctx context.Context, userID string, req UpdateProfileRequest) (*UserDTO, error) {
	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone cannot be empty")
		}
		updates["phone"] = phone
	}
	if req.Image != nil {
		updates["image"] = strings.TrimSpace(*req.Image)
	}

	user, err := s.repo.UpdateProfile(ctx, userID, updates)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "phone already registered")
		}
		return nil, mapUserError(err, "update profile")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func mapUserError(err error, op string) error {
	if errors.Is(err, db.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
