package users

import (
	"context"
	"testing"
	"time"

	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return conn
}

func seedUser(t *testing.T, repo *Repository, email, phone string) *models.User {
	t.Helper()
	user := &models.User{Name: "Mona", Email: email, Phone: phone, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestRepositoryCreateAndLookup(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	user := seedUser(t, repo, "mona@example.com", "0100")
	assert.Equal(t, enums.UserRoleUser, user.Role)

	byEmail, err := repo.FindByEmail(ctx, "mona@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byPhone, err := repo.FindByEmailOrPhone(ctx, "other@example.com", "0100")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPhone.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, db.ErrNotFound)

	err = repo.Create(ctx, &models.User{Name: "Dup", Email: "mona@example.com", Phone: "0199", PasswordHash: "x"})
	assert.ErrorIs(t, err, db.ErrDuplicate)
}

func TestRepositoryRecordLogin(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	user := seedUser(t, repo, "mona@example.com", "0100")

	at := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordLogin(ctx, user.ID, at, []string{"2025-03-02", "2025-03-01"}))
	require.NoError(t, repo.RecordLogin(ctx, user.ID, at, []string{"2025-03-02", "2025-03-02", "2025-03-01"}))

	loaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.LoginCount)
	require.NotNil(t, loaded.LastLoginAt)
	assert.True(t, loaded.LastLoginAt.Equal(at))
	assert.Equal(t, []string{"2025-03-02", "2025-03-02", "2025-03-01"}, loaded.LoginHistory)

	assert.ErrorIs(t, repo.RecordLogin(ctx, uuid.NewString(), at, nil), db.ErrNotFound)
}

func TestServiceUpdateMe(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	mona := seedUser(t, repo, "mona@example.com", "0100")
	seedUser(t, repo, "ali@example.com", "0200")

	name := "  Mona Adel "
	image := "https://cdn.example.com/me.png"
	dto, err := svc.UpdateMe(ctx, mona.ID, UpdateProfileRequest{Name: &name, Image: &image})
	require.NoError(t, err)
	assert.Equal(t, "Mona Adel", dto.Name)
	require.NotNil(t, dto.Image)
	assert.Equal(t, image, *dto.Image)

	taken := "0200"
	_, err = svc.UpdateMe(ctx, mona.ID, UpdateProfileRequest{Phone: &taken})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = svc.Me(ctx, uuid.NewString())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
