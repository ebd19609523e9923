package handler

import (
	"errors"
	"io"
	"net/http"

	integrationapp "github.com/dropship/backend/internal/application/integration"
	"github.com/dropship/backend/internal/domain/integration"
	"github.com/dropship/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// IntegrationHandler relays fulfillment requests to the external engine
type IntegrationHandler struct {
	BaseHandler
	gateway *integrationapp.GatewayService
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(gateway *integrationapp.GatewayService) *IntegrationHandler {
	return &IntegrationHandler{gateway: gateway}
}

// SyncSupplier handles POST /integration/supplier/sync
func (h *IntegrationHandler) SyncSupplier(c *gin.Context) {
	h.forward(c, integration.OperationSync)
}

// FulfillOrder handles POST /integration/order/fulfill
func (h *IntegrationHandler) FulfillOrder(c *gin.Context) {
	h.forward(c, integration.OperationFulfill)
}

// MonitorPrices handles GET /integration/price/monitor
func (h *IntegrationHandler) MonitorPrices(c *gin.Context) {
	h.forward(c, integration.OperationPriceMonitor)
}

// MonitorStock handles GET /integration/stock/monitor
func (h *IntegrationHandler) MonitorStock(c *gin.Context) {
	h.forward(c, integration.OperationStockMonitor)
}

// forward relays one operation. The engine reply is passed through with
// status 200; any failure becomes 500 with the operation's fixed message.
func (h *IntegrationHandler) forward(c *gin.Context, op integration.Operation) {
	var body []byte
	if route, ok := op.Route(); ok && route.ForwardsBody && c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest, "Request body exceeds maximum allowed size")
				return
			}
			h.Message(c, http.StatusInternalServerError, route.FailureMessage)
			return
		}
	}

	resp, err := h.gateway.Forward(c.Request.Context(), op, body)
	if err != nil {
		var gwErr *integrationapp.GatewayError
		if errors.As(err, &gwErr) {
			h.Message(c, http.StatusInternalServerError, gwErr.Message)
			return
		}
		h.InternalError(c, "An unexpected error occurred")
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(http.StatusOK, contentType, resp.Body)
}
