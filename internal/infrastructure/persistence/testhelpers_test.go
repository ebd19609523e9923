package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/dropship/backend/internal/domain/catalog"
	"github.com/dropship/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory sqlite database with the schema applied.
// A single connection keeps every query on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, (&Database{DB: db}).EnsureSchema(context.Background()))
	return db
}

// newMockDB returns a postgres-dialect gorm DB backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, GormConfig())
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func fakeSupplier(t *testing.T) *partner.Supplier {
	t.Helper()

	supplier, err := partner.NewSupplier(
		gofakeit.Company(),
		gofakeit.Email(),
		gofakeit.Phone(),
		partner.Address{
			Street:  gofakeit.Street(),
			City:    gofakeit.City(),
			State:   gofakeit.State(),
			ZipCode: gofakeit.Zip(),
			Country: gofakeit.Country(),
		},
	)
	require.NoError(t, err)
	return supplier
}

func fakeProduct(t *testing.T, supplier *partner.Supplier, rating *float64) *catalog.Product {
	t.Helper()

	product, err := catalog.NewProduct(gofakeit.ProductName(), decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2))
	require.NoError(t, err)
	if supplier != nil {
		product.AssignSupplier(supplier.ID, supplier.Name)
	}
	require.NoError(t, product.Rate(rating))
	return product
}

func ratingPtr(v float64) *float64 {
	return &v
}
