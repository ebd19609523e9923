package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/dropship/backend/internal/application/catalog"
	partnerapp "github.com/dropship/backend/internal/application/partner"
	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/infrastructure/persistence"
	"github.com/dropship/backend/internal/interfaces/http/dto"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// catalogFixture wires the product and supplier handlers to an in-memory database
type catalogFixture struct {
	db        *gorm.DB
	router    *gin.Engine
	suppliers *persistence.GormSupplierRepository
	products  *persistence.GormProductRepository
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), persistence.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, (&persistence.Database{DB: db}).EnsureSchema(context.Background()))

	supplierRepo := persistence.NewGormSupplierRepository(db)
	productRepo := persistence.NewGormProductRepository(db)

	supplierService := partnerapp.NewSupplierService(supplierRepo, nil)
	ratingService := partnerapp.NewSupplierRatingService(partner.NewRatingCalculator(productRepo), supplierRepo, nil, nil)
	productService := catalogapp.NewProductService(productRepo, supplierRepo, ratingService)

	products := NewProductHandler(productService)
	suppliers := NewSupplierHandler(supplierService, ratingService)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/products", products.List)
	router.GET("/products/:id", products.GetByID)
	router.POST("/products", products.Create)
	router.PUT("/products/:id", products.Update)
	router.PATCH("/products/:id/stock", products.AdjustStock)
	router.DELETE("/products/:id", products.Delete)
	router.GET("/suppliers", suppliers.List)
	router.GET("/suppliers/:id", suppliers.GetByID)
	router.POST("/suppliers", suppliers.Create)
	router.PUT("/suppliers/:id", suppliers.Update)
	router.POST("/suppliers/:id/deactivate", suppliers.Deactivate)
	router.POST("/suppliers/:id/activate", suppliers.Activate)
	router.POST("/suppliers/:id/rating/recalculate", suppliers.RecalculateRating)

	return &catalogFixture{db: db, router: router, suppliers: supplierRepo, products: productRepo}
}

func (f *catalogFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, f.router, method, path, body)
}

func serve(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the data field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()

	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope.Response
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error
}

func supplierPayload(name, email string) map[string]any {
	return map[string]any{
		"name":  name,
		"email": email,
		"phone": "+1 555 0100",
		"address": map[string]any{
			"street":  "1 Market St",
			"city":    "Springfield",
			"state":   "IL",
			"zipCode": "62701",
			"country": "US",
		},
	}
}

func createSupplier(t *testing.T, f *catalogFixture, name, email string) partnerapp.SupplierResponse {
	t.Helper()

	w := f.do(t, http.MethodPost, "/suppliers", supplierPayload(name, email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var supplier partnerapp.SupplierResponse
	decodeData(t, w, &supplier)
	return supplier
}

func createProduct(t *testing.T, f *catalogFixture, body map[string]any) catalogapp.ProductResponse {
	t.Helper()

	w := f.do(t, http.MethodPost, "/products", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product catalogapp.ProductResponse
	decodeData(t, w, &product)
	return product
}
