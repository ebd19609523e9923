package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	integrationapp "github.com/dropship/backend/internal/application/integration"
	"github.com/dropship/backend/internal/domain/integration"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Forward(ctx context.Context, op integration.Operation, body []byte) (*integration.EngineResponse, error) {
	args := m.Called(ctx, op, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.EngineResponse), args.Error(1)
}

func newIntegrationRouter(engine integration.FulfillmentEngine) *gin.Engine {
	h := NewIntegrationHandler(integrationapp.NewGatewayService(engine))
	router := gin.New()
	router.POST("/integration/supplier/sync", h.SyncSupplier)
	router.POST("/integration/order/fulfill", h.FulfillOrder)
	router.GET("/integration/price/monitor", h.MonitorPrices)
	router.GET("/integration/stock/monitor", h.MonitorStock)
	return router
}

var integrationCases = []struct {
	op      integration.Operation
	method  string
	path    string
	body    string
	failure string
}{
	{integration.OperationSync, http.MethodPost, "/integration/supplier/sync", `{"supplierId":"s-1"}`, "Failed to sync supplier products"},
	{integration.OperationFulfill, http.MethodPost, "/integration/order/fulfill", `{"orderId":"o-1"}`, "Failed to fulfill order"},
	{integration.OperationPriceMonitor, http.MethodGet, "/integration/price/monitor", "", "Failed to monitor prices"},
	{integration.OperationStockMonitor, http.MethodGet, "/integration/stock/monitor", "", "Failed to monitor stock levels"},
}

func TestIntegrationHandler_RelaysEngineReply(t *testing.T) {
	for _, tc := range integrationCases {
		t.Run(tc.op.String(), func(t *testing.T) {
			engine := new(mockEngine)
			var expectedBody []byte
			if tc.body != "" {
				expectedBody = []byte(tc.body)
			}
			engine.On("Forward", mock.Anything, tc.op, expectedBody).Return(&integration.EngineResponse{
				StatusCode:  http.StatusOK,
				ContentType: "application/json",
				Body:        []byte(`{"status":"done"}`),
			}, nil)

			req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
			w := httptest.NewRecorder()
			newIntegrationRouter(engine).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"status":"done"}`, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			engine.AssertExpectations(t)
		})
	}
}

func TestIntegrationHandler_FailureUsesFixedMessage(t *testing.T) {
	for _, tc := range integrationCases {
		t.Run(tc.op.String(), func(t *testing.T) {
			engine := new(mockEngine)
			engine.On("Forward", mock.Anything, tc.op, mock.Anything).
				Return(nil, errors.Join(integration.ErrEngineUnavailable, errors.New("dial tcp: connection refused")))

			req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
			w := httptest.NewRecorder()
			newIntegrationRouter(engine).ServeHTTP(w, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"message":"`+tc.failure+`"}`, w.Body.String())
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestIntegrationHandler_DefaultsContentType(t *testing.T) {
	engine := new(mockEngine)
	engine.On("Forward", mock.Anything, integration.OperationStockMonitor, []byte(nil)).
		Return(&integration.EngineResponse{StatusCode: http.StatusOK, Body: []byte(`[]`)}, nil)

	req := httptest.NewRequest(http.MethodGet, "/integration/stock/monitor", nil)
	w := httptest.NewRecorder()
	newIntegrationRouter(engine).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "[]", w.Body.String())
}

func TestIntegrationHandler_BodyTooLarge(t *testing.T) {
	engine := new(mockEngine)
	h := NewIntegrationHandler(integrationapp.NewGatewayService(engine))
	router := gin.New()
	router.POST("/integration/order/fulfill", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 4)
		c.Next()
	}, h.FulfillOrder)

	req := httptest.NewRequest(http.MethodPost, "/integration/order/fulfill", bytes.NewBufferString(`{"orderId":"o-1"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	engine.AssertNotCalled(t, "Forward", mock.Anything, mock.Anything, mock.Anything)
}
