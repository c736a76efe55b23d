package users

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ezoostore/storefront-backend/internal/repo"
	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(conn)}
}

// Create inserts a new user. Unique email/phone violations surface as db.ErrDuplicate.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	if err := r.base.DB(ctx).Create(user).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return db.ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByEmailOrPhone returns the first user holding either identifier.
func (r *Repository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error) {
	return r.findOne(ctx, "email = ? OR phone = ?", email, phone)
}

// FindByID loads a user by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, db.NormalizeNotFound(err)
	}
	return &user, nil
}

// List returns every user, newest first.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	var rows []models.User
	if err := repo.Newest(r.base.DB(ctx).Model(&models.User{})).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// RecordLogin bumps the login counter and stores the new history.
func (r *Repository) RecordLogin(ctx context.Context, id string, at time.Time, history []string) error {
	encoded, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encoding login history: %w", err)
	}
	res := r.base.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"login_count":   gorm.Expr("login_count + 1"),
			"last_login_at": at,
			"login_history": string(encoded),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored hash, used when upgrading legacy hashes.
func (r *Repository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.base.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// UpdateProfile writes the given profile columns and returns the fresh record.
func (r *Repository) UpdateProfile(ctx context.Context, id string, updates map[string]any) (*models.User, error) {
	if len(updates) > 0 {
		res := r.base.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			if db.IsUniqueViolation(res.Error, "") {
				return nil, db.ErrDuplicate
			}
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, db.ErrNotFound
		}
	}
	return r.FindByID(ctx, id)
}
