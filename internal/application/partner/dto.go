package partner

import (
	"time"

	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AddressInput is the postal address in create requests
type AddressInput struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zipCode" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// AddressPatch carries a partial address change
type AddressPatch struct {
	Street  *string `json:"street" binding:"omitempty,min=1"`
	City    *string `json:"city" binding:"omitempty,min=1"`
	State   *string `json:"state" binding:"omitempty,min=1"`
	ZipCode *string `json:"zipCode" binding:"omitempty,min=1"`
	Country *string `json:"country" binding:"omitempty,min=1"`
}

// CreateSupplierRequest represents a request to create a new supplier.
// Rating is not accepted: it is derived from the supplier's products.
type CreateSupplierRequest struct {
	Name    string       `json:"name" binding:"required,max=100"`
	Email   string       `json:"email" binding:"required"`
	Phone   string       `json:"phone" binding:"required"`
	Address AddressInput `json:"address"`
}

// UpdateSupplierRequest represents a partial supplier update
type UpdateSupplierRequest struct {
	Name    *string       `json:"name" binding:"omitempty,max=100"`
	Email   *string       `json:"email"`
	Phone   *string       `json:"phone"`
	Address *AddressPatch `json:"address"`
}

// AddressResponse is the postal address in API responses
type AddressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Address    AddressResponse `json:"address"`
	IsActive   bool            `json:"isActive"`
	Rating     float64         `json:"rating"`
	ProductIDs []uuid.UUID     `json:"productIds"`
	Version    int             `json:"version"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// SupplierListFilter represents filter options for supplier list
type SupplierListFilter struct {
	Search    string   `form:"search"`
	IsActive  *bool    `form:"isActive"`
	MinRating *float64 `form:"minRating" binding:"omitempty,min=0,max=5"`
	MaxRating *float64 `form:"maxRating" binding:"omitempty,min=0,max=5"`
	Page      int      `form:"page" binding:"omitempty,min=1"`
	PageSize  int      `form:"pageSize" binding:"omitempty,min=1,max=100"`
	OrderBy   string   `form:"orderBy" binding:"omitempty,oneof=name email rating created_at updated_at"`
	OrderDir  string   `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// toDomain converts the list filter into the repository filter
func (f SupplierListFilter) toDomain() partner.SupplierFilter {
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
	return partner.SupplierFilter{
		Filter:    base.Normalize(),
		IsActive:  f.IsActive,
		MinRating: f.MinRating,
		MaxRating: f.MaxRating,
	}
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	productIDs := s.ProductIDs
	if productIDs == nil {
		productIDs = []uuid.UUID{}
	}
	return SupplierResponse{
		ID:    s.ID,
		Name:  s.Name,
		Email: s.Email,
		Phone: s.Phone,
		Address: AddressResponse{
			Street:  s.Address.Street,
			City:    s.Address.City,
			State:   s.Address.State,
			ZipCode: s.Address.ZipCode,
			Country: s.Address.Country,
		},
		IsActive:   s.IsActive,
		Rating:     s.Rating,
		ProductIDs: productIDs,
		Version:    s.Version,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// ToSupplierResponses converts a slice of domain Suppliers
func ToSupplierResponses(suppliers []partner.Supplier) []SupplierResponse {
	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = ToSupplierResponse(&suppliers[i])
	}
	return responses
}
