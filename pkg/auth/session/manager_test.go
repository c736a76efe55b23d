package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("sess:%s", accessID)
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestManagerGenerateAndRotate(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()
	owner := Owner{UserID: "user-1", DeviceID: "phone"}

	token, err := manager.Generate(ctx, "access-123", owner)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ok, _ := manager.HasSession(ctx, "access-123"); !ok {
		t.Fatalf("expected session after generate")
	}

	if _, _, _, err := manager.Rotate(ctx, "access-123", "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	newAccessID, newToken, gotOwner, err := manager.Rotate(ctx, "access-123", token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if gotOwner != owner {
		t.Fatalf("expected owner %+v, got %+v", owner, gotOwner)
	}
	if newAccessID == "access-123" || newToken == token {
		t.Fatalf("rotation should issue fresh identifiers")
	}
	if ok, _ := manager.HasSession(ctx, "access-123"); ok {
		t.Fatalf("old access session left behind")
	}
	if ok, _ := manager.HasSession(ctx, newAccessID); !ok {
		t.Fatalf("new access session missing")
	}
}

func TestManagerRevoke(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	if _, err := manager.Generate(ctx, "a", Owner{UserID: "u"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := manager.Revoke(ctx, "a"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, err := manager.HasSession(ctx, "a"); err != nil || ok {
		t.Fatalf("expected session gone, ok=%v err=%v", ok, err)
	}
	if _, _, _, err := manager.Rotate(ctx, "a", "anything"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("rotating a revoked session should fail, got %v", err)
	}
	if err := manager.Revoke(ctx, " "); err == nil {
		t.Fatalf("expected blank access id to fail")
	}
}

func TestManagerGenerateRequiresOwner(t *testing.T) {
	manager := newTestManager(newMockStore())
	if _, err := manager.Generate(context.Background(), "a", Owner{}); err == nil {
		t.Fatalf("expected missing owner to fail")
	}
}
