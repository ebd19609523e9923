package catalog

import (
	"context"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFilter narrows product listings. Nil pointers mean "no constraint".
type ProductFilter struct {
	shared.Filter
	Category   string
	SupplierID *uuid.UUID
	IsActive   *bool
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	InStock    *bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll finds products matching the filter; search covers name and description
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter ProductFilter) (int64, error)

	// FindBySupplier returns every product referencing the supplier
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]Product, error)

	// Save creates or updates a product. An update only applies when the row
	// still carries product.StoredVersion(), otherwise it yields
	// shared.ErrConcurrencyConflict.
	Save(ctx context.Context, product *Product) error

	// AdjustStock adds delta to the stored stock in a single conditional
	// statement. It yields shared.ErrInsufficientStock when the result would
	// be negative and shared.ErrNotFound when the product does not exist.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error

	// Delete permanently removes a product
	Delete(ctx context.Context, id uuid.UUID) error
}
