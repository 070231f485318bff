package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func testCart(owner domain.Owner) *domain.Cart {
	return &domain.Cart{
		Owner: owner,
		Lines: []domain.CartLine{
			{Owner: owner, ProductID: 1, ProductName: "Widget", Price: decimal.NewFromFloat(10.00), Quantity: 2},
			{Owner: owner, ProductID: 2, ProductName: "Gadget", Price: decimal.NewFromFloat(4.50), Quantity: 3},
		},
	}
}

func TestCacheGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	owner := domain.SessionOwner("abc123")

	cart := testCart(owner)
	cartJSON, _ := json.Marshal(cart)
	mr.Set(cacheKey(owner), string(cartJSON))

	result, err := cache.Get(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, result.Owner)
	assert.Len(t, result.Lines, 2)
	assert.Equal(t, int64(1), result.Lines[0].ProductID)
	assert.True(t, result.Lines[0].Price.Equal(decimal.NewFromFloat(10.00)))
}

func TestCacheGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), domain.SessionOwner("nonexistent"))
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestCacheGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	owner := domain.UserOwner(7)
	cartJSON, err := json.Marshal(testCart(owner))
	require.NoError(t, err)

	e2 := mr.Set(cacheKey(owner), string(cartJSON[0:10]))
	require.NoError(t, e2)

	_, cacheErr := cache.Get(context.Background(), owner)
	require.ErrorContains(t, cacheErr, "unmarshal cart failed")
}

func TestCacheSet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	owner := domain.UserOwner(42)
	cart := testCart(owner)

	err := cache.Set(context.Background(), owner, cart)
	require.NoError(t, err)

	stored, e2 := mr.Get(cacheKey(owner))
	require.NoError(t, e2)
	assert.NotEmpty(t, stored)

	var storedCart domain.Cart
	require.NoError(t, json.Unmarshal([]byte(stored), &storedCart))
	assert.Len(t, storedCart.Lines, 2)
}

func TestCacheSet_WithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	owner := domain.SessionOwner("ttl-owner")
	err := cache.Set(context.Background(), owner, &domain.Cart{Owner: owner})
	require.NoError(t, err)

	ttl := mr.TTL(cacheKey(owner))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestCacheDelete(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	owner := domain.SessionOwner("gone")
	cartJSON, _ := json.Marshal(&domain.Cart{Owner: owner})
	mr.Set(cacheKey(owner), string(cartJSON))
	assert.True(t, mr.Exists(cacheKey(owner)))

	require.NoError(t, cache.Delete(context.Background(), owner))
	assert.False(t, mr.Exists(cacheKey(owner)))
}

func TestCacheDelete_NonExistentKey(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	err := cache.Delete(context.Background(), domain.SessionOwner("nonexistent"))
	assert.NoError(t, err)
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "cart:user:9", cacheKey(domain.UserOwner(9)))
	assert.Equal(t, "cart:session:tok", cacheKey(domain.SessionOwner("tok")))
}
