// Package metrics exposes service metrics in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dropship/backend/internal/domain/integration"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns every collector of the service. It is safe for concurrent use.
type Registry struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge
	engineCallsTotal    *prometheus.CounterVec
	engineCallDuration  *prometheus.HistogramVec
	ratingRefreshTotal  *prometheus.CounterVec
	accessDeniedTotal   *prometheus.CounterVec
}

// New creates a registry with process and Go runtime collectors attached
func New(namespace string) *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	r := &Registry{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		engineCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fulfillment",
			Name:      "engine_calls_total",
			Help:      "Calls to the fulfillment engine by operation and outcome.",
		}, []string{"operation", "outcome"}),
		engineCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fulfillment",
			Name:      "engine_call_duration_seconds",
			Help:      "Fulfillment engine call latency.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		ratingRefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "partner",
			Name:      "supplier_rating_refresh_total",
			Help:      "Supplier rating write-backs by outcome.",
		}, []string{"outcome"}),
		accessDeniedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "access_denied_total",
			Help:      "Requests rejected by the role guard.",
		}, []string{"route"}),
	}

	reg.MustRegister(
		r.httpRequestsTotal,
		r.httpRequestDuration,
		r.httpInFlight,
		r.engineCallsTotal,
		r.engineCallDuration,
		r.ratingRefreshTotal,
		r.accessDeniedTotal,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry for tests and custom exporters
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// GinMiddleware records request count and latency per matched route.
// Unmatched paths are grouped under "unmatched" to bound label cardinality.
func (r *Registry) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		r.httpInFlight.Inc()
		defer r.httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		r.httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// ObserveEngineCall implements fulfillment.CallObserver
func (r *Registry) ObserveEngineCall(op integration.Operation, outcome string, elapsed time.Duration) {
	r.engineCallsTotal.WithLabelValues(op.String(), outcome).Inc()
	r.engineCallDuration.WithLabelValues(op.String()).Observe(elapsed.Seconds())
}

// ObserveRatingRefresh counts one supplier rating write-back
func (r *Registry) ObserveRatingRefresh(err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.ratingRefreshTotal.WithLabelValues(outcome).Inc()
}

// ObserveAccessDenied counts one role guard rejection
func (r *Registry) ObserveAccessDenied(route string) {
	r.accessDeniedTotal.WithLabelValues(route).Inc()
}
