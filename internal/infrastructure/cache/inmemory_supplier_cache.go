package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dropship/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// InMemorySupplierCache implements partner.SupplierCache in process memory.
// It backs single-instance deployments when Redis is unreachable.
type InMemorySupplierCache struct {
	entries sync.Map // map[uuid.UUID]*cacheEntry[partner.Supplier]
	ttl     time.Duration
	now     func() time.Time

	mu          sync.Mutex
	generations map[uuid.UUID]uint64

	hits   int64
	misses int64
}

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// NewInMemorySupplierCache creates an in-memory cache with the given TTL
func NewInMemorySupplierCache(ttl time.Duration) *InMemorySupplierCache {
	if ttl <= 0 {
		ttl = defaultSupplierTTL
	}
	return &InMemorySupplierCache{ttl: ttl, now: time.Now, generations: make(map[uuid.UUID]uint64)}
}

// Get returns a copy of the cached supplier while it has not expired
func (c *InMemorySupplierCache) Get(_ context.Context, id uuid.UUID) (*partner.Supplier, bool) {
	v, ok := c.entries.Load(id)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	entry := v.(*cacheEntry[partner.Supplier])
	if c.now().After(entry.expiresAt) {
		c.entries.CompareAndDelete(id, v)
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}
	atomic.AddInt64(&c.hits, 1)
	supplier := cloneSupplier(entry.value)
	return &supplier, true
}

// Generation returns the number of invalidations seen for the supplier
func (c *InMemorySupplierCache) Generation(_ context.Context, id uuid.UUID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[id]
}

// Set stores a copy of the supplier unless it was invalidated after generation was read
func (c *InMemorySupplierCache) Set(_ context.Context, supplier *partner.Supplier, generation uint64) {
	if supplier == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[supplier.ID] != generation {
		return
	}
	c.entries.Store(supplier.ID, &cacheEntry[partner.Supplier]{
		value:     cloneSupplier(*supplier),
		expiresAt: c.now().Add(c.ttl),
	})
}

// Invalidate drops the cached supplier and bumps its generation
func (c *InMemorySupplierCache) Invalidate(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[id]++
	c.entries.Delete(id)
}

// Stats returns hit and miss counters
func (c *InMemorySupplierCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

func cloneSupplier(s partner.Supplier) partner.Supplier {
	s.ProductIDs = append([]uuid.UUID(nil), s.ProductIDs...)
	return s
}

var _ partner.SupplierCache = (*InMemorySupplierCache)(nil)
