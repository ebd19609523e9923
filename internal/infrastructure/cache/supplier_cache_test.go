package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newSupplier(t *testing.T) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier("Acme", "sales@acme.test", "+1 555 0100", partner.Address{
		Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US",
	})
	require.NoError(t, err)
	return s
}

func TestInMemorySupplierCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemorySupplierCache(time.Minute)
	supplier := newSupplier(t)
	supplier.SetProductIDs([]uuid.UUID{uuid.New()})

	_, ok := c.Get(ctx, supplier.ID)
	assert.False(t, ok)

	c.Set(ctx, supplier, c.Generation(ctx, supplier.ID))
	cached, ok := c.Get(ctx, supplier.ID)
	require.True(t, ok)
	assert.Equal(t, supplier.Name, cached.Name)
	assert.Equal(t, supplier.ProductIDs, cached.ProductIDs)

	// cached values are copies
	cached.ProductIDs[0] = uuid.Nil
	again, _ := c.Get(ctx, supplier.ID)
	assert.NotEqual(t, uuid.Nil, again.ProductIDs[0])

	c.Invalidate(ctx, supplier.ID)
	_, ok = c.Get(ctx, supplier.ID)
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(2), misses)
}

func TestInMemorySupplierCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemorySupplierCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	supplier := newSupplier(t)
	c.Set(ctx, supplier, 0)

	now = now.Add(2 * time.Minute)
	_, ok := c.Get(ctx, supplier.ID)
	assert.False(t, ok)
}

func TestInMemorySupplierCache_RefusesFillAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewInMemorySupplierCache(time.Minute)
	supplier := newSupplier(t)

	generation := c.Generation(ctx, supplier.ID)
	stale := *supplier
	require.NoError(t, supplier.Rename("Renamed Supplier"))
	c.Invalidate(ctx, supplier.ID)

	c.Set(ctx, &stale, generation)
	_, ok := c.Get(ctx, supplier.ID)
	assert.False(t, ok, "fill read before the invalidation must not be cached")

	c.Set(ctx, supplier, c.Generation(ctx, supplier.ID))
	cached, ok := c.Get(ctx, supplier.ID)
	require.True(t, ok)
	assert.Equal(t, "Renamed Supplier", cached.Name)
	assert.Equal(t, uint64(1), c.Generation(ctx, supplier.ID))
}

func TestNoopSupplierCache(t *testing.T) {
	ctx := context.Background()
	var c partner.NoopSupplierCache
	supplier := newSupplier(t)

	c.Set(ctx, supplier, c.Generation(ctx, supplier.ID))
	_, ok := c.Get(ctx, supplier.ID)
	assert.False(t, ok)
	c.Invalidate(ctx, supplier.ID)
}

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisSupplierCache_DegradesToMiss(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx := context.Background()
	ctx = logger.WithContext(ctx, zap.New(core))

	c := NewRedisSupplierCache(unreachableClient(), "", 0)
	defer c.Close()
	supplier := newSupplier(t)

	assert.Equal(t, ^uint64(0), c.Generation(ctx, supplier.ID))
	c.Set(ctx, supplier, 0)
	_, ok := c.Get(ctx, supplier.ID)
	assert.False(t, ok)
	c.Invalidate(ctx, supplier.ID)

	assert.Equal(t, 1, logs.FilterMessage("supplier cache generation read failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("supplier cache write failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("supplier cache read failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("supplier cache invalidation failed").Len())
	assert.Equal(t, defaultSupplierKeyPrefix+supplier.ID.String(), c.key(supplier.ID))
	assert.Equal(t, defaultSupplierKeyPrefix+"gen:"+supplier.ID.String(), c.generationKey(supplier.ID))
	assert.Equal(t, defaultSupplierTTL, c.ttl)
}

func TestDecodeSupplier_KeepsStoredVersion(t *testing.T) {
	supplier := newSupplier(t)
	supplier.MarkStored()
	require.NoError(t, supplier.Rename("Renamed Supplier"))

	data, err := json.Marshal(supplier)
	require.NoError(t, err)
	decoded, err := decodeSupplier(data)
	require.NoError(t, err)
	assert.True(t, decoded.IsStored())
	assert.Equal(t, supplier.Version, decoded.StoredVersion())

	_, err = decodeSupplier([]byte("{"))
	assert.Error(t, err)
}

func TestSupplierCacheFactory(t *testing.T) {
	ctx := context.Background()
	redisCfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("disabled yields noop", func(t *testing.T) {
		c, closeFn, err := NewSupplierCacheFactory(config.CacheConfig{}, redisCfg).Create(ctx)
		require.NoError(t, err)
		assert.IsType(t, partner.NoopSupplierCache{}, c)
		assert.NoError(t, closeFn())
	})

	t.Run("unreachable redis falls back to memory", func(t *testing.T) {
		f := NewSupplierCacheFactory(config.CacheConfig{Enabled: true, SupplierTTL: time.Minute}, redisCfg,
			WithPingTimeout(200*time.Millisecond))
		c, closeFn, err := f.Create(ctx)
		require.NoError(t, err)
		assert.IsType(t, &InMemorySupplierCache{}, c)
		assert.NoError(t, closeFn())
	})

	t.Run("fallback can be refused", func(t *testing.T) {
		f := NewSupplierCacheFactory(config.CacheConfig{Enabled: true}, redisCfg,
			WithPingTimeout(200*time.Millisecond), WithInMemoryFallback(false))
		_, _, err := f.Create(ctx)
		assert.Error(t, err)
	})
}
