package integration

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrEngineUnavailable     = errors.New("integration: fulfillment engine unavailable")
	ErrEngineRequestFailed   = errors.New("integration: fulfillment engine request failed")
	ErrEngineInvalidResponse = errors.New("integration: invalid fulfillment engine response")
	ErrUnknownOperation      = errors.New("integration: unknown fulfillment operation")
)

// Operation identifies one of the calls the fulfillment engine supports
type Operation int

const (
	OperationSync Operation = iota + 1
	OperationFulfill
	OperationPriceMonitor
	OperationStockMonitor
)

// Route is the upstream binding of an operation
type Route struct {
	Method string
	Path   string
	// FailureMessage is the only detail a caller sees when the operation fails.
	FailureMessage string
	// ForwardsBody reports whether the inbound body is passed through.
	ForwardsBody bool
}

var routes = map[Operation]Route{
	OperationSync: {
		Method:         http.MethodPost,
		Path:           "/api/supplier/sync",
		FailureMessage: "Failed to sync supplier products",
		ForwardsBody:   true,
	},
	OperationFulfill: {
		Method:         http.MethodPost,
		Path:           "/api/order/fulfill",
		FailureMessage: "Failed to fulfill order",
		ForwardsBody:   true,
	},
	OperationPriceMonitor: {
		Method:         http.MethodGet,
		Path:           "/api/price/monitor",
		FailureMessage: "Failed to monitor prices",
	},
	OperationStockMonitor: {
		Method:         http.MethodGet,
		Path:           "/api/stock/monitor",
		FailureMessage: "Failed to monitor stock levels",
	},
}

// Operations returns every known operation in declaration order
func Operations() []Operation {
	return []Operation{OperationSync, OperationFulfill, OperationPriceMonitor, OperationStockMonitor}
}

// Route returns the upstream binding. ok is false for unknown operations.
func (o Operation) Route() (Route, bool) {
	r, ok := routes[o]
	return r, ok
}

// IsValid returns true if the operation is known
func (o Operation) IsValid() bool {
	_, ok := routes[o]
	return ok
}

// String returns a stable name used in logs and metrics
func (o Operation) String() string {
	switch o {
	case OperationSync:
		return "supplier_sync"
	case OperationFulfill:
		return "order_fulfill"
	case OperationPriceMonitor:
		return "price_monitor"
	case OperationStockMonitor:
		return "stock_monitor"
	default:
		return "unknown"
	}
}

// EngineResponse is a successful engine reply, relayed to the caller unchanged
type EngineResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// FulfillmentEngine is the port for the external fulfillment engine.
// Implementations make exactly one attempt per call and must honour ctx
// cancellation. Any failure is returned wrapped in ErrEngineUnavailable or
// ErrEngineRequestFailed.
type FulfillmentEngine interface {
	Forward(ctx context.Context, op Operation, body []byte) (*EngineResponse, error)
}
