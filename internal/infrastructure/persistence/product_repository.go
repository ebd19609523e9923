package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/dropship/backend/internal/domain/catalog"
	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var productSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"rating":     "rating",
	"category":   "category",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// GormProductRepository implements catalog.ProductRepository using GORM.
// It also serves as the partner.ProductRatingReader for rating aggregation.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	product.MarkStored()
	return &product, nil
}

// FindAll finds products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	query = paginate(query, filter.Filter, productSortColumns, "created_at")
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	markProductsStored(products)
	return products, nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter catalog.ProductFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindBySupplier returns every product referencing the supplier
func (r *GormProductRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	markProductsStored(products)
	return products, nil
}

// ListRatingsBySupplier reads product ratings for one supplier in a single statement
func (r *GormProductRepository) ListRatingsBySupplier(ctx context.Context, supplierID uuid.UUID) ([]partner.ProductRating, error) {
	var rows []struct {
		ID     uuid.UUID
		Rating *float64
	}
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Select("id", "rating").
		Where("supplier_id = ?", supplierID).
		Order("created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	ratings := make([]partner.ProductRating, len(rows))
	for i, row := range rows {
		ratings[i] = partner.ProductRating{ProductID: row.ID, Rating: row.Rating}
	}
	return ratings, nil
}

// Save inserts a new product or updates a stored one with an optimistic
// version check
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	db := r.db.WithContext(ctx)
	if !product.IsStored() {
		if err := db.Create(product).Error; err != nil {
			return err
		}
		product.MarkStored()
		return nil
	}

	result := db.Model(product).
		Where("version = ?", product.StoredVersion()).
		Select("*").
		Updates(product)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	product.MarkStored()
	return nil
}

// AdjustStock moves the stored stock by delta unless it would go negative
func (r *GormProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&catalog.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", delta),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&catalog.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrInsufficientStock
}

// Delete permanently removes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func markProductsStored(products []catalog.Product) {
	for i := range products {
		products[i].MarkStored()
	}
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	query = textSearch(query, filter.Search, productSearchVector, "name", "description")
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.InStock != nil {
		if *filter.InStock {
			query = query.Where("stock > 0")
		} else {
			query = query.Where("stock <= 0")
		}
	}
	return query
}

var (
	_ catalog.ProductRepository    = (*GormProductRepository)(nil)
	_ partner.ProductRatingReader = (*GormProductRepository)(nil)
)
