package partner

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	MaxSupplierNameLength = 100
	MinRating             = 0.0
	MaxRating             = 5.0
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Address is the postal address of a supplier. Every part is required.
type Address struct {
	Street  string `gorm:"type:varchar(200);not null"`
	City    string `gorm:"type:varchar(100);not null"`
	State   string `gorm:"type:varchar(100);not null"`
	ZipCode string `gorm:"type:varchar(20);not null"`
	Country string `gorm:"type:varchar(100);not null"`
}

// Supplier represents an external goods provider.
// It is the aggregate root for supplier-related operations.
//
// ProductIDs is a back-reference only: products point at their supplier
// through catalog.SupplierRef and removing a product never removes the supplier.
type Supplier struct {
	shared.BaseAggregateRoot
	Name       string      `gorm:"type:varchar(100);not null;index:idx_suppliers_name"`
	Email      string      `gorm:"type:varchar(200);not null;uniqueIndex:idx_suppliers_email"`
	Phone      string      `gorm:"type:varchar(50);not null"`
	Address    Address     `gorm:"embedded;embeddedPrefix:address_"`
	IsActive   bool        `gorm:"not null;index:idx_suppliers_is_active"`
	Rating     float64     `gorm:"not null;default:0;index:idx_suppliers_rating"`
	ProductIDs []uuid.UUID `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new active supplier. The email is trimmed and lowercased.
func NewSupplier(name, email, phone string, address Address) (*Supplier, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	phone = strings.TrimSpace(phone)
	address = address.trimmed()

	if err := validateSupplierName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Phone:             phone,
		Address:           address,
		IsActive:          true,
		Rating:            0,
		ProductIDs:        []uuid.UUID{},
	}, nil
}

// NormalizeEmail returns the canonical form used for storage and uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Rename changes the supplier's display name
func (s *Supplier) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateSupplierName(name); err != nil {
		return err
	}
	s.Name = name
	s.IncrementVersion()
	return nil
}

// ChangeEmail replaces the contact email. Uniqueness is checked by the caller.
func (s *Supplier) ChangeEmail(email string) error {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	s.Email = email
	s.IncrementVersion()
	return nil
}

// ChangePhone replaces the contact phone
func (s *Supplier) ChangePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return err
	}
	s.Phone = phone
	s.IncrementVersion()
	return nil
}

// Relocate replaces the whole address
func (s *Supplier) Relocate(address Address) error {
	address = address.trimmed()
	if err := address.Validate(); err != nil {
		return err
	}
	s.Address = address
	s.IncrementVersion()
	return nil
}

// SetRating stores an aggregated rating. It is only called from the
// rating write-back path, never with client input.
func (s *Supplier) SetRating(rating float64) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	s.Rating = rating
	s.IncrementVersion()
	return nil
}

// SetProductIDs replaces the back-reference list
func (s *Supplier) SetProductIDs(ids []uuid.UUID) {
	s.ProductIDs = slices.Clone(ids)
	if s.ProductIDs == nil {
		s.ProductIDs = []uuid.UUID{}
	}
	s.IncrementVersion()
}

// ApplyRating stores an aggregation result in one version step. It reports
// false and leaves the supplier untouched when the rating and product
// references already match the snapshot.
func (s *Supplier) ApplyRating(snapshot RatingSnapshot) (bool, error) {
	if s.Rating == snapshot.Rating && slices.Equal(s.ProductIDs, snapshot.ProductIDs) {
		return false, nil
	}
	if err := ValidateRating(snapshot.Rating); err != nil {
		return false, err
	}
	s.Rating = snapshot.Rating
	s.ProductIDs = slices.Clone(snapshot.ProductIDs)
	if s.ProductIDs == nil {
		s.ProductIDs = []uuid.UUID{}
	}
	s.IncrementVersion()
	return true, nil
}

// HasProduct reports whether the product is in the back-reference list
func (s *Supplier) HasProduct(productID uuid.UUID) bool {
	return slices.Contains(s.ProductIDs, productID)
}

// Activate activates the supplier
func (s *Supplier) Activate() error {
	if s.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Supplier is already active")
	}
	s.IsActive = true
	s.IncrementVersion()
	return nil
}

// Deactivate soft-deletes the supplier. Products keep their reference.
func (s *Supplier) Deactivate() error {
	if !s.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Supplier is already inactive")
	}
	s.IsActive = false
	s.IncrementVersion()
	return nil
}

// Validate checks that every address part is present
func (a Address) Validate() error {
	parts := []struct {
		field, value string
	}{
		{"address.street", a.Street},
		{"address.city", a.City},
		{"address.state", a.State},
		{"address.zipCode", a.ZipCode},
		{"address.country", a.Country},
	}
	for _, p := range parts {
		if strings.TrimSpace(p.value) == "" {
			return shared.NewValidationError("INVALID_ADDRESS", p.field, p.field+" is required")
		}
	}
	return nil
}

func (a Address) trimmed() Address {
	return Address{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		ZipCode: strings.TrimSpace(a.ZipCode),
		Country: strings.TrimSpace(a.Country),
	}
}

// ValidateRating checks that a rating lies in [0, 5]
func ValidateRating(rating float64) error {
	if rating < MinRating || rating > MaxRating || math.IsNaN(rating) {
		return shared.NewValidationError("INVALID_RATING", "rating", "Rating must be between 0 and 5")
	}
	return nil
}

func validateSupplierName(name string) error {
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "name", "Supplier name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxSupplierNameLength {
		return shared.NewValidationError("INVALID_NAME", "name", "Supplier name cannot exceed 100 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("INVALID_EMAIL", "email", "Email cannot be empty")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewValidationError("INVALID_EMAIL", "email", "Please enter a valid email")
	}
	return nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return shared.NewValidationError("INVALID_PHONE", "phone", "Phone cannot be empty")
	}
	if len(phone) > 50 {
		return shared.NewValidationError("INVALID_PHONE", "phone", "Phone cannot exceed 50 characters")
	}
	return nil
}
