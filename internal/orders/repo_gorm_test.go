package orders

import (
	"context"
	"testing"
	"time"

	"github.com/ezoostore/storefront-backend/pkg/db"
	"github.com/ezoostore/storefront-backend/pkg/db/models"
	"github.com/ezoostore/storefront-backend/pkg/enums"
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
	require.NoError(t, conn.AutoMigrate(&models.Order{}))
	return conn
}

func sampleOrder(userID string, createdAt time.Time) *models.Order {
	return &models.Order{
		UserID: userID,
		Items: []models.OrderItem{{
			Name:            "Custom T-Shirt",
			Size:            "M",
			Color:           "black",
			Quantity:        1,
			Price:           200,
			DiscountedPrice: 200,
			ImageURL:        "https://storage.googleapis.com/bucket/tshirt-logos/a.png",
			Status:          enums.OrderStatusProcessing,
		}},
		Subtotal:     200,
		Shipping:     20,
		Total:        220,
		Status:       enums.OrderStatusProcessing,
		Customer:     models.Customer{Name: "Mona", Email: "mona@example.com", Phone: "010", Governorate: "Cairo", Address: "12 St"},
		HostedAssets: []string{"https://storage.googleapis.com/bucket/tshirt-logos/a.png"},
		CreatedAt:    createdAt,
	}
}

func TestSQLRepositoryCreateAndList(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()
	userA, userB := uuid.NewString(), uuid.NewString()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first := sampleOrder(userA, base)
	second := sampleOrder(userB, base.Add(time.Minute))
	third := sampleOrder(userA, base.Add(2*time.Minute))
	for _, o := range []*models.Order{first, second, third} {
		require.NoError(t, repo.Create(ctx, o))
		require.NotEmpty(t, o.ID)
		assert.Equal(t, 1, o.Version)
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, first.ID, all[2].ID)

	mine, err := repo.ListByUser(ctx, userA)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.ID, mine[0].ID)

	loaded, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.HostedAssets, loaded.HostedAssets)
	assert.Equal(t, "Cairo", loaded.Customer.Governorate)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, int64(200), loaded.Items[0].Price)

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestSQLRepositoryUpdateIsCompareAndSwap(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()
	order := sampleOrder(uuid.NewString(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, order))

	delivered := enums.OrderStatusDelivered
	updated, err := repo.Update(ctx, order.ID, 1, Patch{Status: &delivered})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Items[0].Status)
	assert.Equal(t, int64(220), updated.Total)

	customer := models.Customer{Name: "Mona", Email: "m@example.com", Phone: "011", Governorate: "Giza", Address: "1 Rd"}
	_, err = repo.Update(ctx, order.ID, 1, Patch{Customer: &customer})
	assert.ErrorIs(t, err, db.ErrStaleVersion)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Version)
	assert.Equal(t, enums.OrderStatusDelivered, reloaded.Items[0].Status)
	assert.Equal(t, "Cairo", reloaded.Customer.Governorate)

	_, err = repo.Update(ctx, uuid.NewString(), 1, Patch{Customer: &customer})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestSQLRepositoryDelete(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	ctx := context.Background()
	order := sampleOrder(uuid.NewString(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.Delete(ctx, order.ID))
	assert.ErrorIs(t, repo.Delete(ctx, order.ID), db.ErrNotFound)
}
