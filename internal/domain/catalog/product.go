package catalog

import (
	"maps"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const MaxProductNameLength = 100

// SupplierRef is the embedded reference from a product to its supplier.
// The name is denormalized for display and is not authoritative.
type SupplierRef struct {
	ID   *uuid.UUID `gorm:"type:uuid;index:idx_products_supplier_id"`
	Name string     `gorm:"type:varchar(100)"`
}

// IsSet reports whether the product references a supplier
func (r SupplierRef) IsSet() bool {
	return r.ID != nil && *r.ID != uuid.Nil
}

// Is reports whether the reference points at the given supplier
func (r SupplierRef) Is(supplierID uuid.UUID) bool {
	return r.IsSet() && *r.ID == supplierID
}

// Product represents a sellable item in the catalog.
// It is the aggregate root for product-related operations.
type Product struct {
	shared.BaseAggregateRoot
	Name        string            `gorm:"type:varchar(100);not null;index:idx_products_name"`
	Description string            `gorm:"type:text"`
	Price       decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0;index:idx_products_price"`
	Category    string            `gorm:"type:varchar(100);index:idx_products_category"`
	Images      []string          `gorm:"type:text;serializer:json"`
	Stock       int               `gorm:"not null;default:0"`
	Supplier    SupplierRef       `gorm:"embedded;embeddedPrefix:supplier_"`
	Attributes  map[string]string `gorm:"type:text;serializer:json"`
	IsActive    bool              `gorm:"not null;index:idx_products_is_active"`
	// Rating is nil until the product is rated. Aggregation treats nil as 0.
	Rating *float64 `gorm:"index:idx_products_rating"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(name string, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Price:             price,
		Images:            []string{},
		Attributes:        map[string]string{},
		IsActive:          true,
	}, nil
}

// Describe updates the product's name, description and category
func (p *Product) Describe(name, description, category string) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = name
	p.Description = description
	p.Category = strings.TrimSpace(category)
	p.IncrementVersion()
	return nil
}

// SetPrice updates the selling price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	p.Price = price
	p.IncrementVersion()
	return nil
}

// SetStock sets the absolute stock level
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewValidationError("INVALID_STOCK", "stock", "Stock cannot be negative")
	}
	p.Stock = stock
	p.IncrementVersion()
	return nil
}

// AdjustStock adds delta to the stock level. The level never drops below zero.
func (p *Product) AdjustStock(delta int) error {
	if p.Stock+delta < 0 {
		return shared.ErrInsufficientStock
	}
	p.Stock += delta
	p.IncrementVersion()
	return nil
}

// IsInStock reports whether at least one unit is available
func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

// SetImages replaces the image URLs
func (p *Product) SetImages(images []string) {
	p.Images = slices.DeleteFunc(slices.Clone(images), func(s string) bool {
		return strings.TrimSpace(s) == ""
	})
	if p.Images == nil {
		p.Images = []string{}
	}
	p.IncrementVersion()
}

// SetAttributes replaces the free-form attributes
func (p *Product) SetAttributes(attrs map[string]string) {
	p.Attributes = maps.Clone(attrs)
	if p.Attributes == nil {
		p.Attributes = map[string]string{}
	}
	p.IncrementVersion()
}

// AssignSupplier points the product at a supplier. Existence is checked by the caller.
func (p *Product) AssignSupplier(id uuid.UUID, name string) {
	p.Supplier = SupplierRef{ID: &id, Name: name}
	p.IncrementVersion()
}

// ClearSupplier removes the supplier reference
func (p *Product) ClearSupplier() {
	p.Supplier = SupplierRef{}
	p.IncrementVersion()
}

// Rate sets the product rating. A nil rating clears it.
func (p *Product) Rate(rating *float64) error {
	if rating != nil {
		if *rating < 0 || *rating > 5 || math.IsNaN(*rating) {
			return shared.NewValidationError("INVALID_RATING", "rating", "Rating must be between 0 and 5")
		}
		v := *rating
		rating = &v
	}
	p.Rating = rating
	p.IncrementVersion()
	return nil
}

// RatingValue returns the rating with absence mapped to 0
func (p *Product) RatingValue() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// Activate makes the product visible in the catalog
func (p *Product) Activate() error {
	if p.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.IsActive = true
	p.IncrementVersion()
	return nil
}

// Deactivate hides the product from the catalog
func (p *Product) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.IsActive = false
	p.IncrementVersion()
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "name", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxProductNameLength {
		return shared.NewValidationError("INVALID_NAME", "name", "Product name cannot exceed 100 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "price", "Price cannot be negative")
	}
	return nil
}
