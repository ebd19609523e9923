package partner

import (
	"context"

	"github.com/google/uuid"
)

// SupplierCache is a best-effort read-through cache for supplier lookups.
// Implementations swallow their own failures: a broken cache behaves like a
// miss and never fails the caller.
//
// Every Invalidate advances the supplier's generation. A reader takes the
// generation before it reads storage and passes it to Set, which drops the
// value when a write invalidated the supplier in between.
type SupplierCache interface {
	Get(ctx context.Context, id uuid.UUID) (*Supplier, bool)
	Generation(ctx context.Context, id uuid.UUID) uint64
	Set(ctx context.Context, supplier *Supplier, generation uint64)
	Invalidate(ctx context.Context, id uuid.UUID)
}

// NoopSupplierCache never stores anything. It is used when caching is disabled.
type NoopSupplierCache struct{}

func (NoopSupplierCache) Get(context.Context, uuid.UUID) (*Supplier, bool) { return nil, false }
func (NoopSupplierCache) Generation(context.Context, uuid.UUID) uint64     { return 0 }
func (NoopSupplierCache) Set(context.Context, *Supplier, uint64)           {}
func (NoopSupplierCache) Invalidate(context.Context, uuid.UUID)            {}

var _ SupplierCache = NoopSupplierCache{}
