package products

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ezoostore/storefront-backend/internal/media"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ezoostore/storefront-backend/pkg/errors"
	"github.com/ezoostore/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const hostedPrefix = "https://storage.googleapis.com/bucket/"

type fakeImageHost struct {
	uploads   []string
	deleted   []string
	deleteErr error
}

func (f *fakeImageHost) UploadDataURI(_ context.Context, folder, _ string) (media.Asset, error) {
	url := hostedPrefix + folder + "/" + uuid.NewString() + ".png"
	f.uploads = append(f.uploads, url)
	return media.Asset{URL: url}, nil
}

func (f *fakeImageHost) DeleteURL(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return f.deleteErr
}

func (f *fakeImageHost) IsHosted(url string) bool {
	return strings.HasPrefix(url, hostedPrefix)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}))
	return conn
}

func newTestService(t *testing.T) (Service, *Repository, *fakeImageHost) {
	t.Helper()
	repo := NewRepository(openTestDB(t))
	host := &fakeImageHost{}
	svc, err := NewService(repo, host, logger.New(logger.Options{Output: io.Discard}), "products")
	require.NoError(t, err)
	return svc, repo, host
}

func TestCreateListAndFilterByCategory(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		Name: "Night Owl", Description: "Glow print", Price: 300, Discount: 15, Category: "Strange", ImageURL: "https://cdn.example.com/owl.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "strange", created.Category)
	assert.Equal(t, int64(255), created.DiscountedPrice)

	_, err = svc.Create(ctx, CreateProductInput{
		Name: "Basic", Description: "Plain", Price: 200, Category: "new", ImageURL: "https://cdn.example.com/basic.png",
	})
	require.NoError(t, err)

	strange, err := svc.List(ctx, "STRANGE")
	require.NoError(t, err)
	require.Len(t, strange, 1)
	assert.Equal(t, created.ID, strange[0].ID)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateUploadsInlineImage(t *testing.T) {
	svc, _, host := newTestService(t)

	created, err := svc.Create(context.Background(), CreateProductInput{
		Name: "Custom", Description: "d", Price: 250, Category: "new", Image: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)
	require.Len(t, host.uploads, 1)
	assert.Equal(t, host.uploads[0], created.ImageURL)
	assert.True(t, strings.Contains(created.ImageURL, "/products/"))
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []CreateProductInput{
		{Name: "x", Description: "d", Price: 0, Category: "new", ImageURL: "u"},
		{Name: "x", Description: "d", Price: 10, Discount: 120, Category: "new", ImageURL: "u"},
		{Name: "x", Description: "d", Price: 10, Category: "new"},
		{Name: " ", Description: "d", Price: 10, Category: "new", ImageURL: "u"},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, input)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "input %+v: %v", input, err)
	}
}

func TestDeleteRemovesHostedImageBestEffort(t *testing.T) {
	svc, repo, host := newTestService(t)
	host.deleteErr = errors.New("host down")
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		Name: "Gone", Description: "d", Price: 100, Category: "new", Image: "data:image/png;base64,AAAA",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, []string{created.ImageURL}, host.deleted)

	_, err = repo.FindByID(ctx, created.ID)
	require.Error(t, err)

	err = svc.Delete(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteLeavesForeignImagesAlone(t *testing.T) {
	svc, _, host := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductInput{
		Name: "Linked", Description: "d", Price: 100, Category: "new", ImageURL: "https://cdn.example.com/linked.png",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Empty(t, host.deleted)
}

func TestFindByIDs(t *testing.T) {
	_, repo, _ := newTestService(t)
	ctx := context.Background()

	p := &models.Product{Name: "a", Description: "d", Price: 100, Category: "new", ImageURL: "u"}
	require.NoError(t, repo.Create(ctx, p))

	found, err := repo.FindByIDs(ctx, []string{p.ID, uuid.NewString()})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, int64(100), found[p.ID].Price)
}
