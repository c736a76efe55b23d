package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/ezoostore/storefront-backend/internal/repo"
	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists device sessions, one row per (user, device).
type Repository struct {
	base repo.Base
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(conn)}
}

// Upsert creates the device session or re-activates the existing one with a
// new token id.
func (r *Repository) Upsert(ctx context.Context, sess *models.Session) error {
	return r.base.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Session
		err := tx.Where("user_id = ? AND device_id = ?", sess.UserID, sess.DeviceID).First(&existing).Error
		if err != nil {
			if !errors.Is(db.NormalizeNotFound(err), db.ErrNotFound) {
				return err
			}
			sess.IsActive = true
			return tx.Create(sess).Error
		}

		updates := map[string]any{
			"token_id":      sess.TokenID,
			"user_agent":    sess.UserAgent,
			"last_login_at": sess.LastLoginAt,
			"is_active":     true,
			"revoked_at":    nil,
		}
		if err := tx.Model(&models.Session{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", existing.ID).First(sess).Error
	})
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	var rows []models.Session
	q := r.base.DB(ctx).Where("user_id = ?", userID).Order("last_login_at DESC").Order("id DESC")
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	if err := r.base.DB(ctx).Where("id = ?", id).First(&sess).Error; err != nil {
		return nil, db.NormalizeNotFound(err)
	}
	return &sess, nil
}

func (r *Repository) FindByTokenID(ctx context.Context, tokenID string) (*models.Session, error) {
	var sess models.Session
	if err := r.base.DB(ctx).Where("token_id = ?", tokenID).First(&sess).Error; err != nil {
		return nil, db.NormalizeNotFound(err)
	}
	return &sess, nil
}

// UpdateToken points an active session at a rotated token id.
func (r *Repository) UpdateToken(ctx context.Context, oldTokenID, newTokenID string, at time.Time) error {
	res := r.base.DB(ctx).
		Model(&models.Session{}).
		Where("token_id = ? AND is_active = ?", oldTokenID, true).
		Updates(map[string]any{"token_id": newTokenID, "last_login_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}

// MarkRevoked deactivates the session. Revoking twice is a no-op.
func (r *Repository) MarkRevoked(ctx context.Context, id string, at time.Time) error {
	return r.base.DB(ctx).
		Model(&models.Session{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]any{"is_active": false, "revoked_at": at}).Error
}
