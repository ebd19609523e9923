package partner

import (
	"context"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierFilter narrows supplier listings. Nil pointers mean "no constraint".
type SupplierFilter struct {
	shared.Filter
	IsActive  *bool
	MinRating *float64
	MaxRating *float64
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindByEmail finds a supplier by its normalized email
	FindByEmail(ctx context.Context, email string) (*Supplier, error)

	// FindAll finds suppliers matching the filter; name search uses the text index
	FindAll(ctx context.Context, filter SupplierFilter) ([]Supplier, error)

	// Count counts suppliers matching the filter
	Count(ctx context.Context, filter SupplierFilter) (int64, error)

	// Save creates or updates a supplier. An update only applies when the row
	// still carries supplier.StoredVersion(), otherwise it yields
	// shared.ErrConcurrencyConflict. A duplicate email yields shared.ErrAlreadyExists.
	Save(ctx context.Context, supplier *Supplier) error

	// SaveRating writes only the rating, product references and version,
	// under the same version check as Save.
	SaveRating(ctx context.Context, supplier *Supplier) error

	// ExistsByEmail checks if a supplier with the given email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByEmailExcludingID checks email uniqueness for updates
	ExistsByEmailExcludingID(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)

	// ExistsByID checks if a supplier exists
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}
