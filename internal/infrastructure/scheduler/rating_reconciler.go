package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RatingRefresher recomputes and persists one supplier's rating
type RatingRefresher interface {
	RefreshRating(ctx context.Context, supplierID uuid.UUID) error
}

// RatingReconcilerConfig holds configuration for the rating reconciler
type RatingReconcilerConfig struct {
	// Interval between full passes over all suppliers
	Interval time.Duration
	// BatchSize is the page size used to walk the supplier table
	BatchSize int
}

// DefaultRatingReconcilerConfig returns default reconciler configuration
func DefaultRatingReconcilerConfig() RatingReconcilerConfig {
	return RatingReconcilerConfig{
		Interval:  time.Hour,
		BatchSize: 100,
	}
}

// Validate checks the configuration
func (c RatingReconcilerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.BatchSize < 1 || c.BatchSize > 100 {
		return fmt.Errorf("%w: batch size must be between 1 and 100", ErrInvalidConfig)
	}
	return nil
}

// RatingReconciler periodically recomputes every supplier's rating. It repairs
// suppliers whose write-back failed after a product change.
type RatingReconciler struct {
	config    RatingReconcilerConfig
	suppliers partner.SupplierRepository
	refresher RatingRefresher
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewRatingReconciler creates a new rating reconciler
func NewRatingReconciler(
	config RatingReconcilerConfig,
	suppliers partner.SupplierRepository,
	refresher RatingRefresher,
	logger *zap.Logger,
) (*RatingReconciler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &RatingReconciler{
		config:    config,
		suppliers: suppliers,
		refresher: refresher,
		logger:    logger,
	}, nil
}

// Start launches the background loop. Calling Start twice is a no-op.
func (r *RatingReconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isRunning {
		return
	}
	r.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.runLoop(ctx)

	r.logger.Info("Rating reconciler started",
		zap.Duration("interval", r.config.Interval),
		zap.Int("batch_size", r.config.BatchSize),
	)
}

// Stop cancels the loop and waits for an in-flight pass to return
func (r *RatingReconciler) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Rating reconciler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *RatingReconciler) runLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("Rating reconciliation pass incomplete", zap.Error(err))
			}
		}
	}
}

// RunOnce refreshes every supplier once and returns how many were refreshed.
// A failing supplier does not stop the pass; failures are reported together.
func (r *RatingReconciler) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	filter := partner.SupplierFilter{Filter: shared.Filter{
		Page:     1,
		PageSize: r.config.BatchSize,
		OrderBy:  "created_at",
		OrderDir: "asc",
	}}

	refreshed, failed := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}

		batch, err := r.suppliers.FindAll(ctx, filter)
		if err != nil {
			return refreshed, fmt.Errorf("list suppliers page %d: %w", filter.Page, err)
		}

		for i := range batch {
			if err := r.refresher.RefreshRating(ctx, batch[i].ID); err != nil {
				failed++
				r.logger.Warn("Supplier rating refresh failed",
					zap.String("supplier_id", batch[i].ID.String()),
					zap.Error(err),
				)
				continue
			}
			refreshed++
		}

		if len(batch) < filter.PageSize {
			break
		}
		filter.Page++
	}

	r.logger.Info("Rating reconciliation pass finished",
		zap.Int("refreshed", refreshed),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	if failed > 0 {
		return refreshed, fmt.Errorf("%w: %d of %d suppliers", ErrReconcileFailed, failed, refreshed+failed)
	}
	return refreshed, nil
}
