package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/dropship/backend/internal/domain/catalog"
	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// Option configures how the gorm connection is opened
type Option func(*gorm.Config, *openOptions)

type openOptions struct {
	tracing bool
}

// WithLogger sets the gorm logger, typically logger.NewGormLogger
func WithLogger(l logger.Interface) Option {
	return func(c *gorm.Config, _ *openOptions) {
		c.Logger = l
	}
}

// WithTracing enables OpenTelemetry spans for every query
func WithTracing(enabled bool) Option {
	return func(_ *gorm.Config, o *openOptions) {
		o.tracing = enabled
	}
}

// GormConfig returns the gorm settings shared by production and tests.
// TranslateError maps driver-specific unique violations to gorm.ErrDuplicatedKey.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}

// NewDatabase opens a PostgreSQL connection pool and verifies it with a ping
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	gormCfg := GormConfig()
	gormCfg.PrepareStmt = true
	var o openOptions
	for _, opt := range opts {
		opt(gormCfg, &o)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if o.tracing {
		if err := db.Use(otelgorm.NewPlugin(otelgorm.WithDBName(cfg.DBName))); err != nil {
			return nil, fmt.Errorf("failed to enable database tracing: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db}, nil
}

// EnsureSchema creates the supplier and product tables and their indexes
// when missing. On PostgreSQL it also adds the full-text search indexes.
func (d *Database) EnsureSchema(ctx context.Context) error {
	db := d.DB.WithContext(ctx)
	if err := db.AutoMigrate(&partner.Supplier{}, &catalog.Product{}); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if !isPostgres(db) {
		return nil
	}
	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_suppliers_name_fts ON suppliers USING GIN (" + supplierSearchVector + ")",
		"CREATE INDEX IF NOT EXISTS idx_products_text_fts ON products USING GIN (" + productSearchVector + ")",
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create search index: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
