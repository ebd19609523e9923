package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SupplierCacheFactory creates the supplier cache based on configuration
type SupplierCacheFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// SupplierCacheFactoryOption is a functional option for configuring the factory
type SupplierCacheFactoryOption func(*SupplierCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SupplierCacheFactoryOption {
	return func(f *SupplierCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to an in-memory cache.
// Default is true.
func WithInMemoryFallback(allow bool) SupplierCacheFactoryOption {
	return func(f *SupplierCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithPingTimeout bounds the startup connectivity check
func WithPingTimeout(d time.Duration) SupplierCacheFactoryOption {
	return func(f *SupplierCacheFactory) {
		f.pingTimeout = d
	}
}

// NewSupplierCacheFactory creates a new factory
func NewSupplierCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...SupplierCacheFactoryOption) *SupplierCacheFactory {
	f := &SupplierCacheFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the configured cache and a close function.
// Disabled caching yields a no-op cache.
func (f *SupplierCacheFactory) Create(ctx context.Context) (partner.SupplierCache, func() error, error) {
	noClose := func() error { return nil }
	if !f.cacheConfig.Enabled {
		f.logger.Info("supplier cache disabled")
		return partner.NoopSupplierCache{}, noClose, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, f.pingTimeout)
	defer cancel()
	err := client.Ping(pingCtx).Err()
	if err == nil {
		f.logger.Info("using Redis supplier cache", zap.String("addr", f.redisConfig.Addr()))
		c := NewRedisSupplierCache(client, f.cacheConfig.KeyPrefix, f.cacheConfig.SupplierTTL)
		return c, c.Close, nil
	}
	_ = client.Close()

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory supplier cache. "+
		"Instances will not share cached suppliers.",
		zap.Error(err),
	)
	return NewInMemorySupplierCache(f.cacheConfig.SupplierTTL), noClose, nil
}
