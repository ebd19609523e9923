package catalog

import (
	"maps"
	"time"

	"github.com/dropship/backend/internal/domain/catalog"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name        string            `json:"name" binding:"required,max=100"`
	Description string            `json:"description"`
	Price       *decimal.Decimal  `json:"price" binding:"required"`
	Category    string            `json:"category" binding:"max=100"`
	Images      []string          `json:"images"`
	Stock       *int              `json:"stock" binding:"omitempty,min=0"`
	SupplierID  *uuid.UUID        `json:"supplierId"`
	Attributes  map[string]string `json:"attributes"`
	IsActive    *bool             `json:"isActive"`
	Rating      *float64          `json:"rating" binding:"omitempty,min=0,max=5"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name        *string            `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string            `json:"description"`
	Price       *decimal.Decimal   `json:"price"`
	Category    *string            `json:"category" binding:"omitempty,max=100"`
	Images      *[]string          `json:"images"`
	Stock       *int               `json:"stock" binding:"omitempty,min=0"`
	SupplierID  *uuid.UUID         `json:"supplierId"`
	Attributes  *map[string]string `json:"attributes"`
	IsActive    *bool              `json:"isActive"`
	Rating      *float64           `json:"rating" binding:"omitempty,min=0,max=5"`
}

// AdjustStockRequest moves stock by a signed delta
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// SupplierRefResponse is the embedded supplier reference
type SupplierRefResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Price          float64              `json:"price"`
	FormattedPrice string               `json:"formattedPrice"`
	Category       string               `json:"category"`
	Images         []string             `json:"images"`
	Stock          int                  `json:"stock"`
	InStock        bool                 `json:"inStock"`
	Supplier       *SupplierRefResponse `json:"supplier,omitempty"`
	Attributes     map[string]string    `json:"attributes"`
	IsActive       bool                 `json:"isActive"`
	Rating         float64              `json:"rating"`
	Version        int                  `json:"version"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// ProductListFilter represents filter options for product list
type ProductListFilter struct {
	Search     string   `form:"search"`
	Category   string   `form:"category"`
	SupplierID string   `form:"supplierId" binding:"omitempty,uuid"`
	IsActive   *bool    `form:"isActive"`
	MinPrice   *float64 `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice   *float64 `form:"maxPrice" binding:"omitempty,min=0"`
	InStock    *bool    `form:"inStock"`
	Page       int      `form:"page" binding:"omitempty,min=1"`
	PageSize   int      `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy    string   `form:"orderBy" binding:"omitempty,oneof=name price stock rating category created_at updated_at"`
	OrderDir   string   `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

func (f ProductListFilter) toDomain() catalog.ProductFilter {
	base := shared.DefaultFilter()
	if f.Page > 0 {
		base.Page = f.Page
	}
	if f.PageSize > 0 {
		base.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		base.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		base.OrderDir = f.OrderDir
	}
	base.Search = f.Search

	filter := catalog.ProductFilter{
		Filter:   base.Normalize(),
		Category: f.Category,
		IsActive: f.IsActive,
		InStock:  f.InStock,
	}
	if id, err := uuid.Parse(f.SupplierID); err == nil {
		filter.SupplierID = &id
	}
	if f.MinPrice != nil {
		d := decimal.NewFromFloat(*f.MinPrice)
		filter.MinPrice = &d
	}
	if f.MaxPrice != nil {
		d := decimal.NewFromFloat(*f.MaxPrice)
		filter.MaxPrice = &d
	}
	return filter
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price.InexactFloat64(),
		FormattedPrice: "$" + p.Price.StringFixed(2),
		Category:       p.Category,
		Images:         append([]string{}, p.Images...),
		Stock:          p.Stock,
		InStock:        p.IsInStock(),
		Attributes:     maps.Clone(p.Attributes),
		IsActive:       p.IsActive,
		Rating:         p.RatingValue(),
		Version:        p.Version,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if resp.Attributes == nil {
		resp.Attributes = map[string]string{}
	}
	if p.Supplier.IsSet() {
		resp.Supplier = &SupplierRefResponse{ID: *p.Supplier.ID, Name: p.Supplier.Name}
	}
	return resp
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
