package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
)

// SessionDTO describes one signed-in device.
type SessionDTO struct {
	ID        string     `json:"id"`
	DeviceID  string     `json:"deviceId"`
	UserAgent string     `json:"userAgent"`
	IsActive  bool       `json:"isActive"`
	Current   bool       `json:"current"`
	LastLogin time.Time  `json:"lastLogin"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func FromModel(s models.Session, currentTokenID string) SessionDTO {
	return SessionDTO{
		ID:        s.ID,
		DeviceID:  s.DeviceID,
		UserAgent: s.UserAgent,
		IsActive:  s.IsActive,
		Current:   currentTokenID != "" && s.TokenID == currentTokenID,
		LastLogin: s.LastLoginAt,
		RevokedAt: s.RevokedAt,
		CreatedAt: s.CreatedAt,
	}
}

// Service tracks device sessions and revokes them explicitly.
type Service interface {
	Touch(ctx context.Context, userID, deviceID, tokenID, userAgent string) (*models.Session, error)
	Rotate(ctx context.Context, oldTokenID, newTokenID string) error
	List(ctx context.Context, userID, currentTokenID string) ([]SessionDTO, error)
	Revoke(ctx context.Context, userID, sessionID string) error
	RevokeToken(ctx context.Context, tokenID string) error
}

type sessionStore interface {
	Upsert(ctx context.Context, sess *models.Session) error
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	FindByTokenID(ctx context.Context, tokenID string) (*models.Session, error)
	UpdateToken(ctx context.Context, oldTokenID, newTokenID string, at time.Time) error
	MarkRevoked(ctx context.Context, id string, at time.Time) error
}

// tokenRevoker drops the redis access session so the token stops working.
type tokenRevoker interface {
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	repo    sessionStore
	revoker tokenRevoker
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(repo sessionStore, revoker tokenRevoker, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("session repository required")
	}
	if revoker == nil {
		return nil, fmt.Errorf("token revoker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, revoker: revoker, logg: logg, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) Touch(ctx context.Context, userID, deviceID, tokenID, userAgent string) (*models.Session, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deviceId is required")
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "unknown"
	}
	sess := &models.Session{
		UserID:      userID,
		DeviceID:    deviceID,
		TokenID:     tokenID,
		UserAgent:   userAgent,
		LastLoginAt: s.now(),
	}
	if err := s.repo.Upsert(ctx, sess); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record session")
	}
	return sess, nil
}

func (s *service) Rotate(ctx context.Context, oldTokenID, newTokenID string) error {
	if err := s.repo.UpdateToken(ctx, oldTokenID, newTokenID, s.now()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session revoked")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID, currentTokenID string) ([]SessionDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sessions")
	}
	out := make([]SessionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row, currentTokenID))
	}
	return out, nil
}

// Revoke ends one of the caller's device sessions.
func (s *service) Revoke(ctx context.Context, userID, sessionID string) error {
	sess, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "session not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session")
	}
	if sess.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
	}
	return s.revoke(ctx, sess)
}

// RevokeToken ends the session that owns tokenID, used by logout.
func (s *service) RevokeToken(ctx context.Context, tokenID string) error {
	sess, err := s.repo.FindByTokenID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			if rerr := s.revoker.Revoke(ctx, tokenID); rerr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, rerr, "revoke token")
			}
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session")
	}
	return s.revoke(ctx, sess)
}

func (s *service) revoke(ctx context.Context, sess *models.Session) error {
	if err := s.repo.MarkRevoked(ctx, sess.ID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	if sess.TokenID != "" {
		if err := s.revoker.Revoke(ctx, sess.TokenID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke token")
		}
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"session_id": sess.ID, "user_id": sess.UserID}), "session.revoked")
	return nil
}
