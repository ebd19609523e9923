package catalog

import (
	"context"
	"errors"

	"github.com/dropship/backend/internal/domain/catalog"
	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SupplierRatingRefresher recomputes and persists a supplier's rating
type SupplierRatingRefresher interface {
	RefreshRating(ctx context.Context, supplierID uuid.UUID) error
}

// ProductService handles product-related business operations.
//
// Writes that can change a supplier's aggregate (create, delete, rating or
// supplier changes) refresh the affected suppliers after the product is saved.
// A failed refresh is logged and does not fail the product write; the
// supplier can be recalculated later.
type ProductService struct {
	productRepo  catalog.ProductRepository
	supplierRepo partner.SupplierRepository
	ratings      SupplierRatingRefresher
}

// NewProductService creates a new ProductService. ratings may be nil.
func NewProductService(
	productRepo catalog.ProductRepository,
	supplierRepo partner.SupplierRepository,
	ratings SupplierRatingRefresher,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		ratings:      ratings,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if req.Price == nil {
		return nil, shared.NewValidationError("INVALID_PRICE", "price", "Product price is required")
	}
	product, err := catalog.NewProduct(req.Name, *req.Price)
	if err != nil {
		return nil, err
	}
	if err := product.Describe(req.Name, req.Description, req.Category); err != nil {
		return nil, err
	}
	product.SetImages(req.Images)
	product.SetAttributes(req.Attributes)
	if req.Stock != nil {
		if err := product.SetStock(*req.Stock); err != nil {
			return nil, err
		}
	}
	if err := product.Rate(req.Rating); err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive {
		if err := product.Deactivate(); err != nil {
			return nil, err
		}
	}
	if req.SupplierID != nil {
		if err := s.assignSupplier(ctx, product, *req.SupplierID); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	if product.Supplier.IsSet() {
		s.refreshSuppliers(ctx, *product.Supplier.ID)
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := filter.toDomain()

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update applies a partial update to a product
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	var previousSupplier *uuid.UUID
	if product.Supplier.IsSet() {
		id := *product.Supplier.ID
		previousSupplier = &id
	}
	ratingChanged := false

	if req.Name != nil || req.Description != nil || req.Category != nil {
		name, description, category := product.Name, product.Description, product.Category
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if req.Category != nil {
			category = *req.Category
		}
		if err := product.Describe(name, description, category); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		if err := product.SetPrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.Images != nil {
		product.SetImages(*req.Images)
	}
	if req.Attributes != nil {
		product.SetAttributes(*req.Attributes)
	}
	if req.Stock != nil {
		if err := product.SetStock(*req.Stock); err != nil {
			return nil, err
		}
	}
	if req.Rating != nil && *req.Rating != product.RatingValue() {
		if err := product.Rate(req.Rating); err != nil {
			return nil, err
		}
		ratingChanged = true
	}
	if req.IsActive != nil && *req.IsActive != product.IsActive {
		if *req.IsActive {
			err = product.Activate()
		} else {
			err = product.Deactivate()
		}
		if err != nil {
			return nil, err
		}
	}
	if req.SupplierID != nil && !product.Supplier.Is(*req.SupplierID) {
		if err := s.assignSupplier(ctx, product, *req.SupplierID); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	var affected []uuid.UUID
	switch {
	case product.Supplier.IsSet() && (previousSupplier == nil || *previousSupplier != *product.Supplier.ID):
		if previousSupplier != nil {
			affected = append(affected, *previousSupplier)
		}
		affected = append(affected, *product.Supplier.ID)
	case ratingChanged && product.Supplier.IsSet():
		affected = append(affected, *product.Supplier.ID)
	}
	s.refreshSuppliers(ctx, affected...)

	response := ToProductResponse(product)
	return &response, nil
}

// AdjustStock moves the product's stock by delta, refusing to go negative.
// The stored level is changed by one conditional update, so concurrent
// adjustments never overdraw it.
func (s *ProductService) AdjustStock(ctx context.Context, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := product.AdjustStock(req.Delta); err != nil {
		return nil, err
	}
	if err := s.productRepo.AdjustStock(ctx, productID, req.Delta); err != nil {
		return nil, err
	}

	stored, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(stored)
	return &response, nil
}

// Delete permanently removes a product
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}
	if product.Supplier.IsSet() {
		s.refreshSuppliers(ctx, *product.Supplier.ID)
	}
	return nil
}

func (s *ProductService) assignSupplier(ctx context.Context, product *catalog.Product, supplierID uuid.UUID) error {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("INVALID_SUPPLIER", "supplierId", "Supplier not found")
		}
		return err
	}
	product.AssignSupplier(supplier.ID, supplier.Name)
	return nil
}

func (s *ProductService) refreshSuppliers(ctx context.Context, supplierIDs ...uuid.UUID) {
	if s.ratings == nil {
		return
	}
	for _, id := range supplierIDs {
		if err := s.ratings.RefreshRating(ctx, id); err != nil {
			logger.L(ctx).Error("supplier rating refresh failed",
				zap.String("supplier_id", id.String()),
				zap.Error(err),
			)
		}
	}
}
