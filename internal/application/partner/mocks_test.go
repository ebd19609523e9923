package partner

import (
	"context"

	"github.com/dropship/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSupplierRepository is a mock implementation of SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	args := m.Called(ctx, id)
	if fn, ok := args.Get(0).(func(context.Context, uuid.UUID) *partner.Supplier); ok {
		return fn(ctx, id), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByEmail(ctx context.Context, email string) (*partner.Supplier, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter partner.SupplierFilter) ([]partner.Supplier, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Count(ctx context.Context, filter partner.SupplierFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) SaveRating(ctx context.Context, supplier *partner.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByEmailExcludingID(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockProductRatingReader is a mock implementation of ProductRatingReader
type MockProductRatingReader struct {
	mock.Mock
}

func (m *MockProductRatingReader) ListRatingsBySupplier(ctx context.Context, supplierID uuid.UUID) ([]partner.ProductRating, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.ProductRating), args.Error(1)
}

// MockSupplierCache is a mock implementation of SupplierCache
type MockSupplierCache struct {
	mock.Mock
}

func (m *MockSupplierCache) Get(ctx context.Context, id uuid.UUID) (*partner.Supplier, bool) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*partner.Supplier), args.Bool(1)
}

func (m *MockSupplierCache) Generation(ctx context.Context, id uuid.UUID) uint64 {
	args := m.Called(ctx, id)
	return args.Get(0).(uint64)
}

func (m *MockSupplierCache) Set(ctx context.Context, supplier *partner.Supplier, generation uint64) {
	m.Called(ctx, supplier, generation)
}

func (m *MockSupplierCache) Invalidate(ctx context.Context, id uuid.UUID) {
	m.Called(ctx, id)
}

// MockRatingObserver records refresh outcomes
type MockRatingObserver struct {
	mock.Mock
}

func (m *MockRatingObserver) ObserveRatingRefresh(err error) {
	m.Called(err)
}

func validAddress() partner.Address {
	return partner.Address{
		Street:  "1 Main St",
		City:    "Springfield",
		State:   "IL",
		ZipCode: "62701",
		Country: "US",
	}
}

func newTestSupplier() *partner.Supplier {
	s, err := partner.NewSupplier("Acme Wholesale", "sales@acme.test", "+1 555 0100", validAddress())
	if err != nil {
		panic(err)
	}
	return s
}
