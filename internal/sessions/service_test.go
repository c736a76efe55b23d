package sessions

import (
	"context"
	"io"
	"testing"

	"github.com/ezoostore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingRevoker struct {
	revoked []string
}

func (r *recordingRevoker) Revoke(_ context.Context, accessID string) error {
	r.revoked = append(r.revoked, accessID)
	return nil
}

func newTestService(t *testing.T) (Service, *Repository, *recordingRevoker) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Session{}))

	repo := NewRepository(conn)
	revoker := &recordingRevoker{}
	svc, err := NewService(repo, revoker, logger.New(logger.Options{Output: io.Discard}))
	require.NoError(t, err)
	return svc, repo, revoker
}

func TestTouchKeepsOneSessionPerDevice(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	first, err := svc.Touch(ctx, userID, "laptop", "jti-1", "Firefox")
	require.NoError(t, err)
	second, err := svc.Touch(ctx, userID, "laptop", "jti-2", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "jti-2", second.TokenID)
	assert.Equal(t, "unknown", second.UserAgent)

	_, err = svc.Touch(ctx, userID, "phone", "jti-3", "Safari")
	require.NoError(t, err)

	list, err := svc.List(ctx, userID, "jti-3")
	require.NoError(t, err)
	require.Len(t, list, 2)
	current := 0
	for _, s := range list {
		if s.Current {
			current++
			assert.Equal(t, "phone", s.DeviceID)
		}
	}
	assert.Equal(t, 1, current)

	_, err = svc.Touch(ctx, userID, " ", "jti-4", "x")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRevokeMarksInactiveAndDropsToken(t *testing.T) {
	svc, repo, revoker := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	sess, err := svc.Touch(ctx, userID, "laptop", "jti-1", "Firefox")
	require.NoError(t, err)

	err = svc.Revoke(ctx, uuid.NewString(), sess.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Empty(t, revoker.revoked)

	require.NoError(t, svc.Revoke(ctx, userID, sess.ID))
	assert.Equal(t, []string{"jti-1"}, revoker.revoked)

	stored, err := repo.FindByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.NotNil(t, stored.RevokedAt)

	err = svc.Rotate(ctx, "jti-1", "jti-9")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	again, err := svc.Touch(ctx, userID, "laptop", "jti-5", "Firefox")
	require.NoError(t, err)
	assert.True(t, again.IsActive)
	assert.Nil(t, again.RevokedAt)
}

func TestRevokeTokenAndRotate(t *testing.T) {
	svc, repo, revoker := newTestService(t)
	ctx := context.Background()
	userID := uuid.NewString()

	sess, err := svc.Touch(ctx, userID, "laptop", "jti-1", "Firefox")
	require.NoError(t, err)
	require.NoError(t, svc.Rotate(ctx, "jti-1", "jti-2"))

	require.NoError(t, svc.RevokeToken(ctx, "jti-2"))
	assert.Equal(t, []string{"jti-2"}, revoker.revoked)
	stored, err := repo.FindByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	require.NoError(t, svc.RevokeToken(ctx, "orphan"))
	assert.Equal(t, []string{"jti-2", "orphan"}, revoker.revoked)
}
