package persistence

import (
	"context"
	"errors"

	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var supplierSortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"rating":     "rating",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// GormSupplierRepository implements partner.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	supplier.MarkStored()
	return &supplier, nil
}

// FindByEmail finds a supplier by email, compared case-insensitively
func (r *GormSupplierRepository) FindByEmail(ctx context.Context, email string) (*partner.Supplier, error) {
	var supplier partner.Supplier
	if err := r.db.WithContext(ctx).
		Where("email = ?", partner.NormalizeEmail(email)).
		First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	supplier.MarkStored()
	return &supplier, nil
}

// FindAll finds suppliers matching the filter
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter partner.SupplierFilter) ([]partner.Supplier, error) {
	var suppliers []partner.Supplier
	query := r.applyFilter(r.db.WithContext(ctx).Model(&partner.Supplier{}), filter)
	query = paginate(query, filter.Filter, supplierSortColumns, "created_at")
	if err := query.Find(&suppliers).Error; err != nil {
		return nil, err
	}
	for i := range suppliers {
		suppliers[i].MarkStored()
	}
	return suppliers, nil
}

// Count counts suppliers matching the filter
func (r *GormSupplierRepository) Count(ctx context.Context, filter partner.SupplierFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&partner.Supplier{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new supplier or updates a stored one with an optimistic
// version check
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	db := r.db.WithContext(ctx)
	if !supplier.IsStored() {
		if err := db.Create(supplier).Error; err != nil {
			return translateSupplierError(err)
		}
		supplier.MarkStored()
		return nil
	}

	result := db.Model(supplier).
		Where("version = ?", supplier.StoredVersion()).
		Select("*").
		Updates(supplier)
	if result.Error != nil {
		return translateSupplierError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	supplier.MarkStored()
	return nil
}

// SaveRating writes the rating columns only, leaving contact details to Save
func (r *GormSupplierRepository) SaveRating(ctx context.Context, supplier *partner.Supplier) error {
	if !supplier.IsStored() {
		return shared.ErrNotFound
	}
	result := r.db.WithContext(ctx).
		Model(supplier).
		Where("version = ?", supplier.StoredVersion()).
		Select("Rating", "ProductIDs", "Version", "UpdatedAt").
		Updates(supplier)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	supplier.MarkStored()
	return nil
}

func translateSupplierError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError("ALREADY_EXISTS", "Supplier with this email already exists")
	}
	return err
}

// ExistsByEmail checks if a supplier with the given email exists
func (r *GormSupplierRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&partner.Supplier{}).
		Where("email = ?", partner.NormalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByEmailExcludingID checks if another supplier already uses the email
func (r *GormSupplierRepository) ExistsByEmailExcludingID(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&partner.Supplier{}).
		Where("email = ? AND id <> ?", partner.NormalizeEmail(email), excludeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByID checks if a supplier exists
func (r *GormSupplierRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&partner.Supplier{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormSupplierRepository) applyFilter(query *gorm.DB, filter partner.SupplierFilter) *gorm.DB {
	query = textSearch(query, filter.Search, supplierSearchVector, "name")
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.MinRating != nil {
		query = query.Where("rating >= ?", *filter.MinRating)
	}
	if filter.MaxRating != nil {
		query = query.Where("rating <= ?", *filter.MaxRating)
	}
	return query
}

// Ensure GormSupplierRepository implements SupplierRepository
var _ partner.SupplierRepository = (*GormSupplierRepository)(nil)
