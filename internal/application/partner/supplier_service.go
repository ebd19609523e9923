package partner

import (
	"context"
	"errors"

	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var errDuplicateEmail = shared.NewDomainError("ALREADY_EXISTS", "Supplier with this email already exists")

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	cache        partner.SupplierCache
}

// NewSupplierService creates a new SupplierService. A nil cache disables caching.
func NewSupplierService(supplierRepo partner.SupplierRepository, cache partner.SupplierCache) *SupplierService {
	if cache == nil {
		cache = partner.NoopSupplierCache{}
	}
	return &SupplierService{
		supplierRepo: supplierRepo,
		cache:        cache,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.Name, req.Email, req.Phone, partner.Address{
		Street:  req.Address.Street,
		City:    req.Address.City,
		State:   req.Address.State,
		ZipCode: req.Address.ZipCode,
		Country: req.Address.Country,
	})
	if err != nil {
		return nil, err
	}

	exists, err := s.supplierRepo.ExistsByEmail(ctx, supplier.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errDuplicateEmail
	}

	// the unique index still decides when two creates race
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID, reading through the cache
func (s *SupplierService) GetByID(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.find(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves suppliers with filtering and pagination
func (s *SupplierService) List(ctx context.Context, filter SupplierListFilter) ([]SupplierResponse, int64, error) {
	domainFilter := filter.toDomain()

	suppliers, err := s.supplierRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.supplierRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToSupplierResponses(suppliers), total, nil
}

// Update applies a partial update. Rating and product references are not
// client-writable.
func (s *SupplierService) Update(ctx context.Context, supplierID uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := supplier.Rename(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.Email != nil && partner.NormalizeEmail(*req.Email) != supplier.Email {
		if err := supplier.ChangeEmail(*req.Email); err != nil {
			return nil, err
		}
		exists, err := s.supplierRepo.ExistsByEmailExcludingID(ctx, supplier.Email, supplier.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errDuplicateEmail
		}
	}

	if req.Phone != nil {
		if err := supplier.ChangePhone(*req.Phone); err != nil {
			return nil, err
		}
	}

	if req.Address != nil {
		address := supplier.Address
		if req.Address.Street != nil {
			address.Street = *req.Address.Street
		}
		if req.Address.City != nil {
			address.City = *req.Address.City
		}
		if req.Address.State != nil {
			address.State = *req.Address.State
		}
		if req.Address.ZipCode != nil {
			address.ZipCode = *req.Address.ZipCode
		}
		if req.Address.Country != nil {
			address.Country = *req.Address.Country
		}
		if err := supplier.Relocate(address); err != nil {
			return nil, err
		}
	}

	return s.save(ctx, supplier)
}

// Deactivate soft-deletes a supplier by clearing its active flag
func (s *SupplierService) Deactivate(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if err := supplier.Deactivate(); err != nil {
		return nil, err
	}
	return s.save(ctx, supplier)
}

// Activate re-enables a deactivated supplier
func (s *SupplierService) Activate(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if err := supplier.Activate(); err != nil {
		return nil, err
	}
	return s.save(ctx, supplier)
}

// ExistsByEmail reports whether the email is already taken
func (s *SupplierService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.supplierRepo.ExistsByEmail(ctx, email)
}

func (s *SupplierService) find(ctx context.Context, supplierID uuid.UUID) (*partner.Supplier, error) {
	if cached, ok := s.cache.Get(ctx, supplierID); ok {
		return cached, nil
	}
	// must precede the read
	generation := s.cache.Generation(ctx, supplierID)
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, supplier, generation)
	return supplier, nil
}

func (s *SupplierService) save(ctx context.Context, supplier *partner.Supplier) (*SupplierResponse, error) {
	err := s.supplierRepo.Save(ctx, supplier)
	// invalidate even on failure: the stored row may or may not have changed
	s.cache.Invalidate(ctx, supplier.ID)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, errDuplicateEmail
		}
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}
