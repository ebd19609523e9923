package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ProductRating is the rating-relevant slice of a product owned by a supplier.
// A nil Rating means the product was never rated and counts as 0.
type ProductRating struct {
	ProductID uuid.UUID
	Rating    *float64
}

// ProductRatingReader reads the ratings of every product whose supplier
// reference equals the given supplier. Implementations must return a single
// consistent snapshot or an error.
type ProductRatingReader interface {
	ListRatingsBySupplier(ctx context.Context, supplierID uuid.UUID) ([]ProductRating, error)
}

// RatingSnapshot is the result of one aggregation pass
type RatingSnapshot struct {
	SupplierID uuid.UUID
	Rating     float64
	ProductIDs []uuid.UUID
}

// RatingCalculator derives a supplier's rating from its products.
// It never writes anything; callers decide whether to persist the result.
type RatingCalculator struct {
	products ProductRatingReader
}

// NewRatingCalculator creates a calculator over the given reader
func NewRatingCalculator(products ProductRatingReader) *RatingCalculator {
	return &RatingCalculator{products: products}
}

// Calculate returns the mean product rating for the supplier, or 0 when it has no products.
func (c *RatingCalculator) Calculate(ctx context.Context, supplierID uuid.UUID) (float64, error) {
	snapshot, err := c.Aggregate(ctx, supplierID)
	if err != nil {
		return 0, err
	}
	return snapshot.Rating, nil
}

// Aggregate returns the mean rating together with the product identifiers it was computed from.
func (c *RatingCalculator) Aggregate(ctx context.Context, supplierID uuid.UUID) (RatingSnapshot, error) {
	ratings, err := c.products.ListRatingsBySupplier(ctx, supplierID)
	if err != nil {
		return RatingSnapshot{}, fmt.Errorf("list product ratings for supplier %s: %w", supplierID, err)
	}

	ids := make([]uuid.UUID, 0, len(ratings))
	for _, r := range ratings {
		ids = append(ids, r.ProductID)
	}

	return RatingSnapshot{
		SupplierID: supplierID,
		Rating:     MeanRating(ratings),
		ProductIDs: ids,
	}, nil
}

// MeanRating is the arithmetic mean of the ratings, 0 for an empty slice.
func MeanRating(ratings []ProductRating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		if r.Rating != nil {
			sum += *r.Rating
		}
	}
	return sum / float64(len(ratings))
}
