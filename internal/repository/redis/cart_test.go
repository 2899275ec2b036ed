package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
	apperrors "github.com/Harshwardhan-rawani/ShopEZ/pkg/errors"
)

func setupTestRedis(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewCartRepository(client, 24*time.Hour)
	return repo, mr
}

func sampleCart() *domain.Cart {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Cart{
		UserID: "user-001",
		Items: []domain.CartItem{
			{
				ProductID: "prod-1",
				Name:      "Widget",
				Image:     "https://img.example.com/w.jpg",
				Price:     1990,
				Quantity:  2,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCartRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	data, err := json.Marshal(cart)
	require.NoError(t, err)
	require.NoError(t, mr.Set("cart:user-001", string(data)))

	got, err := repo.Get(context.Background(), "user-001")
	require.NoError(t, err)
	assert.Equal(t, cart.UserID, got.UserID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(3980), got.TotalAmount())
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Get(context.Background(), "user-404")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Save_SetsTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	require.NoError(t, repo.Save(context.Background(), cart))

	assert.True(t, mr.Exists("cart:user-001"))
	assert.Equal(t, 24*time.Hour, mr.TTL("cart:user-001"))
}

func TestCartRepository_SaveThenGet_RoundTrip(t *testing.T) {
	repo, _ := setupTestRedis(t)

	cart := sampleCart()
	require.NoError(t, repo.Save(context.Background(), cart))

	got, err := repo.Get(context.Background(), cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, cart.Items, got.Items)
}

func TestCartRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, repo.Save(context.Background(), sampleCart()))
	require.NoError(t, repo.Delete(context.Background(), "user-001"))

	assert.False(t, mr.Exists("cart:user-001"))
}

func TestCartRepository_Delete_MissingIsNoop(t *testing.T) {
	repo, _ := setupTestRedis(t)

	assert.NoError(t, repo.Delete(context.Background(), "user-404"))
}
