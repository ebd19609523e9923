package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropship/backend/internal/domain/partner"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxRatingWriteAttempts bounds retries when the supplier row changes
// between the read and the rating write
const maxRatingWriteAttempts = 3

// RatingObserver records the outcome of rating refreshes
type RatingObserver interface {
	ObserveRatingRefresh(err error)
}

// SupplierRatingService writes the aggregated product rating back into the
// supplier. It is the only path that changes Supplier.Rating.
type SupplierRatingService struct {
	calculator   *partner.RatingCalculator
	supplierRepo partner.SupplierRepository
	cache        partner.SupplierCache
	observer     RatingObserver
}

// NewSupplierRatingService creates a new SupplierRatingService.
// cache and observer may be nil.
func NewSupplierRatingService(
	calculator *partner.RatingCalculator,
	supplierRepo partner.SupplierRepository,
	cache partner.SupplierCache,
	observer RatingObserver,
) *SupplierRatingService {
	if cache == nil {
		cache = partner.NoopSupplierCache{}
	}
	return &SupplierRatingService{
		calculator:   calculator,
		supplierRepo: supplierRepo,
		cache:        cache,
		observer:     observer,
	}
}

// Recalculate recomputes the supplier rating and product back-references and
// persists them. Aggregation errors abort before anything is written.
func (s *SupplierRatingService) Recalculate(ctx context.Context, supplierID uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.refresh(ctx, supplierID)
	if s.observer != nil {
		s.observer.ObserveRatingRefresh(err)
	}
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// RefreshRating is Recalculate without the response, for write-back callers
func (s *SupplierRatingService) RefreshRating(ctx context.Context, supplierID uuid.UUID) error {
	_, err := s.Recalculate(ctx, supplierID)
	return err
}

func (s *SupplierRatingService) refresh(ctx context.Context, supplierID uuid.UUID) (*partner.Supplier, error) {
	for attempt := 1; ; attempt++ {
		supplier, err := s.refreshOnce(ctx, supplierID)
		if errors.Is(err, shared.ErrConcurrencyConflict) && attempt < maxRatingWriteAttempts {
			logger.L(ctx).Debug("supplier changed during rating refresh, retrying",
				zap.String("supplier_id", supplierID.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return supplier, err
	}
}

// refreshOnce aggregates against a freshly read supplier and writes the
// rating columns only if they differ. A concurrent write to the supplier
// surfaces as shared.ErrConcurrencyConflict.
func (s *SupplierRatingService) refreshOnce(ctx context.Context, supplierID uuid.UUID) (*partner.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.calculator.Aggregate(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	changed, err := supplier.ApplyRating(snapshot)
	if err != nil {
		return nil, fmt.Errorf("aggregated rating for supplier %s: %w", supplierID, err)
	}
	if !changed {
		return supplier, nil
	}

	err = s.supplierRepo.SaveRating(ctx, supplier)
	s.cache.Invalidate(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Debug("supplier rating refreshed",
		zap.String("supplier_id", supplierID.String()),
		zap.Float64("rating", snapshot.Rating),
		zap.Int("products", len(snapshot.ProductIDs)),
	)
	return supplier, nil
}
