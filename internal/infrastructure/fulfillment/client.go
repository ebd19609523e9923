package fulfillment

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dropship/backend/internal/domain/integration"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Call outcomes reported to observers
const (
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
	OutcomeInvalid     = "invalid_response"
)

// CallObserver receives one notification per engine call
type CallObserver interface {
	ObserveEngineCall(op integration.Operation, outcome string, elapsed time.Duration)
}

// Client forwards operations to the fulfillment engine over HTTP.
// It makes a single attempt per call and keeps no per-request state.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	maxResponseSize int64
	observer        CallObserver
}

var _ integration.FulfillmentEngine = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is left as given.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithObserver registers a call observer, e.g. Prometheus metrics
func WithObserver(o CallObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a client for the engine at cfg.BaseURL
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:         cfg.BaseURL,
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		maxResponseSize: cfg.MaxResponseSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the engine address the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Forward sends op to the engine. body is ignored for operations that do not forward one.
func (c *Client) Forward(ctx context.Context, op integration.Operation, body []byte) (*integration.EngineResponse, error) {
	route, ok := op.Route()
	if !ok {
		return nil, fmt.Errorf("%w: %d", integration.ErrUnknownOperation, int(op))
	}

	start := time.Now()
	resp, outcome, err := c.do(ctx, route, body)
	if c.observer != nil {
		c.observer.ObserveEngineCall(op, outcome, time.Since(start))
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, route integration.Route, body []byte) (*integration.EngineResponse, string, error) {
	var reader io.Reader
	if route.ForwardsBody {
		if len(body) == 0 {
			body = []byte("{}")
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, route.Method, c.baseURL+route.Path, reader)
	if err != nil {
		return nil, OutcomeFailed, fmt.Errorf("fulfillment: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, OutcomeUnavailable, fmt.Errorf("%w: %v", integration.ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	// The engine's error body is drained but never surfaced.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxResponseSize))
		return nil, OutcomeFailed, fmt.Errorf("%w: HTTP %d", integration.ErrEngineRequestFailed, resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		return nil, OutcomeUnavailable, fmt.Errorf("%w: reading response: %v", integration.ErrEngineUnavailable, err)
	}
	if int64(len(payload)) > c.maxResponseSize {
		return nil, OutcomeInvalid, fmt.Errorf("%w: response exceeds %d bytes", integration.ErrEngineInvalidResponse, c.maxResponseSize)
	}

	return &integration.EngineResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        payload,
	}, OutcomeSuccess, nil
}
