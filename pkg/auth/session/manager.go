package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ezoostore/storefront-backend/pkg/config"
	redisclient "github.com/ezoostore/storefront-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// Owner identifies who an access session was issued to.
type Owner struct {
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`
}

type record struct {
	Owner
	RefreshToken string `json:"refresh_token"`
}

// Manager handles refresh token creation, storage, rotation and revocation.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if accessTTL := cfg.AccessTokenTTL(); ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Generate creates a refresh token bound to accessID and owner and stores it in Redis.
func (m *Manager) Generate(ctx context.Context, accessID string, owner Owner) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", fmt.Errorf("access id is required")
	}
	if strings.TrimSpace(owner.UserID) == "" {
		return "", fmt.Errorf("session owner is required")
	}
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	if err := m.put(ctx, accessID, record{Owner: owner, RefreshToken: token}); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate validates the provided refresh token, invalidates the prior session and
// issues a new access id and refresh token for the same owner.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, Owner, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return "", "", Owner{}, ErrInvalidRefreshToken
	}

	key := m.keyer.AccessSessionKey(oldAccessID)
	current, err := m.load(ctx, key)
	if err != nil {
		return "", "", Owner{}, err
	}
	if subtle.ConstantTimeCompare([]byte(current.RefreshToken), []byte(provided)) != 1 {
		return "", "", Owner{}, ErrInvalidRefreshToken
	}

	newAccessID := NewAccessID()
	newToken, err := generateRefreshToken()
	if err != nil {
		return "", "", Owner{}, err
	}
	if err := m.put(ctx, newAccessID, record{Owner: current.Owner, RefreshToken: newToken}); err != nil {
		return "", "", Owner{}, err
	}
	if err := m.store.Del(ctx, key); err != nil {
		return "", "", Owner{}, err
	}

	return newAccessID, newToken, current.Owner, nil
}

// Revoke deletes the refresh mapping tied to the access identifier, which also
// invalidates any access token carrying it.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

// HasSession reports whether the provided access ID still has an active refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *Manager) put(ctx context.Context, accessID string, rec record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), string(payload), m.ttl)
}

func (m *Manager) load(ctx context.Context, key string) (record, error) {
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return record{}, ErrInvalidRefreshToken
		}
		return record{}, err
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return record{}, ErrInvalidRefreshToken
	}
	return rec, nil
}

// NewAccessID produces a stable identifier used as the JWT jti/Redis key.
func NewAccessID() string {
	return uuid.NewString()
}

func generateRefreshToken() (string, error) {
	bytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
