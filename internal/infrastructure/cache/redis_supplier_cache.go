package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultSupplierKeyPrefix = "dropship:supplier:"
	defaultSupplierTTL       = 5 * time.Minute

	// generation keys outlive the entries they guard
	generationTTLFactor = 4
)

// setIfGeneration writes KEYS[2] only while KEYS[1] still holds ARGV[1].
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisSupplierCache implements partner.SupplierCache using Redis.
// Entries are JSON snapshots keyed by supplier ID and expire after the TTL.
// Each supplier also has a generation counter under <prefix>gen:<id>.
type RedisSupplierCache struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSupplierCache creates a cache over an existing client
func NewRedisSupplierCache(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisSupplierCache {
	if keyPrefix == "" {
		keyPrefix = defaultSupplierKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultSupplierTTL
	}
	return &RedisSupplierCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached supplier. Any Redis or decode error is a miss.
func (c *RedisSupplierCache) Get(ctx context.Context, id uuid.UUID) (*partner.Supplier, bool) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L(ctx).Warn("supplier cache read failed", zap.String("supplier_id", id.String()), zap.Error(err))
		}
		return nil, false
	}

	supplier, err := decodeSupplier(data)
	if err != nil {
		logger.L(ctx).Warn("supplier cache entry is corrupt", zap.String("supplier_id", id.String()), zap.Error(err))
		c.Invalidate(ctx, id)
		return nil, false
	}
	return supplier, true
}

// decodeSupplier restores a snapshot. Snapshots are only filled from
// repository reads, so the decoded supplier counts as stored.
func decodeSupplier(data []byte) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := json.Unmarshal(data, &supplier); err != nil {
		return nil, err
	}
	supplier.MarkStored()
	return &supplier, nil
}

// Generation reads the supplier's invalidation counter. A read failure
// returns a value no Set will match, so nothing is cached.
func (c *RedisSupplierCache) Generation(ctx context.Context, id uuid.UUID) uint64 {
	raw, err := c.client.Get(ctx, c.generationKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err == nil {
		var generation uint64
		if generation, err = strconv.ParseUint(raw, 10, 64); err == nil {
			return generation
		}
	}
	logger.L(ctx).Warn("supplier cache generation read failed", zap.String("supplier_id", id.String()), zap.Error(err))
	return ^uint64(0)
}

// Set stores a snapshot of the supplier unless it was invalidated after generation was read
func (c *RedisSupplierCache) Set(ctx context.Context, supplier *partner.Supplier, generation uint64) {
	if supplier == nil {
		return
	}
	data, err := json.Marshal(supplier)
	if err != nil {
		logger.L(ctx).Warn("supplier cache encode failed", zap.String("supplier_id", supplier.ID.String()), zap.Error(err))
		return
	}
	keys := []string{c.generationKey(supplier.ID), c.key(supplier.ID)}
	err = setIfGeneration.Run(ctx, c.client, keys, strconv.FormatUint(generation, 10), data, c.ttl.Milliseconds()).Err()
	if err != nil {
		logger.L(ctx).Warn("supplier cache write failed", zap.String("supplier_id", supplier.ID.String()), zap.Error(err))
	}
}

// Invalidate drops the cached supplier and bumps its generation
func (c *RedisSupplierCache) Invalidate(ctx context.Context, id uuid.UUID) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key(id))
		pipe.Incr(ctx, c.generationKey(id))
		pipe.PExpire(ctx, c.generationKey(id), generationTTLFactor*c.ttl)
		return nil
	})
	if err != nil {
		logger.L(ctx).Warn("supplier cache invalidation failed", zap.String("supplier_id", id.String()), zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisSupplierCache) Close() error {
	return c.client.Close()
}

func (c *RedisSupplierCache) key(id uuid.UUID) string {
	return c.keyPrefix + id.String()
}

func (c *RedisSupplierCache) generationKey(id uuid.UUID) string {
	return c.keyPrefix + "gen:" + id.String()
}

var _ partner.SupplierCache = (*RedisSupplierCache)(nil)
