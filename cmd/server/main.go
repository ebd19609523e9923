package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/dropship/backend/internal/application/catalog"
	integrationapp "github.com/dropship/backend/internal/application/integration"
	partnerapp "github.com/dropship/backend/internal/application/partner"
	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/infrastructure/auth"
	"github.com/dropship/backend/internal/infrastructure/cache"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/dropship/backend/internal/infrastructure/fulfillment"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/dropship/backend/internal/infrastructure/metrics"
	"github.com/dropship/backend/internal/infrastructure/persistence"
	"github.com/dropship/backend/internal/infrastructure/scheduler"
	"github.com/dropship/backend/internal/infrastructure/telemetry"
	"github.com/dropship/backend/internal/interfaces/http/handler"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
	"github.com/dropship/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting dropship backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold))
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(gormLog),
		persistence.WithTracing(cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to prepare schema", zap.Error(err))
		}
	}

	supplierCache, closeCache, err := cache.NewSupplierCacheFactory(cfg.Cache, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize supplier cache", zap.Error(err))
	}
	defer func() {
		if err := closeCache(); err != nil {
			log.Error("Error closing supplier cache", zap.Error(err))
		}
	}()

	registry := metrics.New(cfg.Metrics.Namespace)

	engineClient, err := fulfillment.NewClient(fulfillment.Config{
		BaseURL:         cfg.Fulfillment.BaseURL,
		Timeout:         cfg.Fulfillment.Timeout,
		MaxResponseSize: cfg.Fulfillment.MaxResponseSize,
	}, fulfillment.WithObserver(registry))
	if err != nil {
		log.Fatal("Failed to configure fulfillment engine client", zap.Error(err))
	}
	log.Info("Fulfillment engine configured", zap.String("base_url", engineClient.BaseURL()))

	// Repositories
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	// Services
	supplierService := partnerapp.NewSupplierService(supplierRepo, supplierCache)
	ratingService := partnerapp.NewSupplierRatingService(
		partner.NewRatingCalculator(productRepo), supplierRepo, supplierCache, registry)
	productService := catalogapp.NewProductService(productRepo, supplierRepo, ratingService)
	gatewayService := integrationapp.NewGatewayService(engineClient)

	if cfg.Scheduler.RatingReconcileEnabled {
		reconciler, err := scheduler.NewRatingReconciler(scheduler.RatingReconcilerConfig{
			Interval:  cfg.Scheduler.RatingReconcileInterval,
			BatchSize: cfg.Scheduler.RatingReconcileBatchSize,
		}, supplierRepo, ratingService, log)
		if err != nil {
			log.Fatal("Failed to configure rating reconciler", zap.Error(err))
		}
		reconciler.Start(ctx)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := reconciler.Stop(stopCtx); err != nil {
				log.Error("Error stopping rating reconciler", zap.Error(err))
			}
		}()
	}

	middleware.SetupValidator()

	engine := router.New(router.Dependencies{
		Config:      cfg,
		Logger:      log,
		Tokens:      auth.NewJWTService(cfg.JWT),
		Metrics:     registry,
		Products:    handler.NewProductHandler(productService),
		Suppliers:   handler.NewSupplierHandler(supplierService, ratingService),
		Integration: handler.NewIntegrationHandler(gatewayService),
		System:      handler.NewSystemHandler(cfg.App.Name, version, db),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
