package router

import (
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/dropship/backend/internal/infrastructure/metrics"
	"github.com/dropship/backend/internal/interfaces/http/handler"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the HTTP surface is built from.
// Metrics may be nil.
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	Tokens      middleware.TokenValidator
	Metrics     *metrics.Registry
	Products    *handler.ProductHandler
	Suppliers   *handler.SupplierHandler
	Integration *handler.IntegrationHandler
	System      *handler.SystemHandler
}

// New builds the gin engine with global middleware, operational endpoints and
// every domain group.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		deps.Logger.Warn("invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = cfg.Telemetry.Enabled
	if cfg.Telemetry.ServiceName != "" {
		tracing.ServiceName = cfg.Telemetry.ServiceName
	}

	engine.Use(
		logger.Recovery(deps.Logger),
		middleware.RequestID(),
		middleware.TracingWithConfig(tracing),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(deps.Logger),
	)
	if deps.Metrics != nil {
		engine.Use(deps.Metrics.GinMiddleware())
	}
	engine.Use(
		middleware.CORS(corsConfig(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.GET("/health", deps.System.Health)
	engine.GET("/system/info", deps.System.GetSystemInfo)
	if deps.Metrics != nil && cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	guard := newGuard(deps)
	NewRouter(engine, WithLegacyPrefix(cfg.HTTP.LegacyRoutePrefix)).
		Register(productRoutes(deps.Products, guard(cfg.Auth.ProductWriteRoles))).
		Register(supplierRoutes(deps.Suppliers, guard(cfg.Auth.SupplierAdminRoles))).
		Register(integrationRoutes(deps.Integration, integrationLimiter(cfg.HTTP))).
		Setup()

	return engine
}

// newGuard returns a factory for the authenticate-then-authorize chain of
// protected routes.
func newGuard(deps Dependencies) func(roles []string) []gin.HandlerFunc {
	guardCfg := middleware.RoleGuardConfig{}
	if deps.Metrics != nil {
		guardCfg.Observer = deps.Metrics
	}
	return func(roles []string) []gin.HandlerFunc {
		return []gin.HandlerFunc{
			middleware.JWTAuth(deps.Tokens),
			middleware.TracingAttributeInjector(),
			middleware.RequireRoleWithConfig(guardCfg, roles...),
		}
	}
}

func productRoutes(h *handler.ProductHandler, guard []gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("catalog", "/products").
		GET("", h.List).
		GET("/:id", h.GetByID).
		POST("", with(guard, h.Create)...).
		PUT("/:id", with(guard, h.Update)...).
		PATCH("/:id/stock", with(guard, h.AdjustStock)...).
		DELETE("/:id", with(guard, h.Delete)...)
}

func supplierRoutes(h *handler.SupplierHandler, guard []gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("partner", "/suppliers").
		GET("", h.List).
		GET("/:id", h.GetByID).
		POST("", with(guard, h.Create)...).
		PUT("/:id", with(guard, h.Update)...).
		POST("/:id/deactivate", with(guard, h.Deactivate)...).
		POST("/:id/activate", with(guard, h.Activate)...).
		POST("/:id/rating/recalculate", with(guard, h.RecalculateRating)...)
}

func integrationRoutes(h *handler.IntegrationHandler, limiter *middleware.RateLimiter) *DomainGroup {
	g := NewDomainGroup("integration", "/integration")
	if limiter != nil {
		g.Use(middleware.RateLimit(limiter))
	}
	return g.
		POST("/supplier/sync", h.SyncSupplier).
		POST("/order/fulfill", h.FulfillOrder).
		GET("/price/monitor", h.MonitorPrices).
		GET("/stock/monitor", h.MonitorStock)
}

// integrationLimiter returns nil when rate limiting is off. One limiter
// serves both mounts.
func integrationLimiter(cfg config.HTTPConfig) *middleware.RateLimiter {
	if !cfg.RateLimitEnabled {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}

func with(chain []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(chain)+1)
	handlers = append(handlers, chain...)
	return append(handlers, h)
}
