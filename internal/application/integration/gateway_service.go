package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropship/backend/internal/domain/integration"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// GatewayError is returned when an operation fails for any reason. Message is
// the fixed text shown to callers; Cause is for logs only.
type GatewayError struct {
	Operation integration.Operation
	Message   string
	Cause     error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// GatewayService relays the four fulfillment operations to the external
// engine. It holds no state between calls.
type GatewayService struct {
	engine integration.FulfillmentEngine
}

// NewGatewayService creates a new GatewayService
func NewGatewayService(engine integration.FulfillmentEngine) *GatewayService {
	return &GatewayService{engine: engine}
}

// Forward performs one engine call. Failures are logged with their cause and
// returned as *GatewayError carrying the operation's fixed message.
func (s *GatewayService) Forward(ctx context.Context, op integration.Operation, body []byte) (*integration.EngineResponse, error) {
	route, ok := op.Route()
	if !ok {
		return nil, &GatewayError{Operation: op, Message: "Unknown integration operation", Cause: integration.ErrUnknownOperation}
	}

	resp, err := s.engine.Forward(ctx, op, body)
	if err != nil {
		fields := []zap.Field{
			zap.String("operation", op.String()),
			zap.String("upstream_path", route.Path),
			zap.Error(err),
		}
		if errors.Is(err, context.Canceled) {
			fields = append(fields, zap.Bool("client_canceled", true))
		}
		logger.L(ctx).Error(route.FailureMessage, fields...)
		return nil, &GatewayError{Operation: op, Message: route.FailureMessage, Cause: err}
	}
	return resp, nil
}
