package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/repository"
	apperrors "github.com/Harshwardhan-rawani/ShopEZ/pkg/errors"
)

// RatingAggregator keeps a product's mean rating and review-id set in sync
// with its reviews. It is the only writer of those two fields: every review
// mutation funnels through Recompute instead of patching the mean in place,
// so partial failures can never make the aggregate drift.
type RatingAggregator struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	logger   *slog.Logger
}

// NewRatingAggregator creates a new rating aggregator.
func NewRatingAggregator(
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	logger *slog.Logger,
) *RatingAggregator {
	return &RatingAggregator{
		products: products,
		reviews:  reviews,
		logger:   logger,
	}
}

// Recompute re-derives the product's aggregate from the full current review
// set and replaces both fields in one atomic write. The mean is 0 when no
// reviews remain. Concurrent recomputes for the same product converge because
// each re-reads the complete set.
//
// A product that no longer exists is not an error: the review mutation that
// triggered the recompute already succeeded and must not be rolled back.
func (a *RatingAggregator) Recompute(ctx context.Context, productID string) error {
	reviews, err := a.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("list reviews for recompute: %w", err)
	}

	mean := domain.MeanRating(reviews)
	reviewIDs := make([]string, len(reviews))
	for i, rv := range reviews {
		reviewIDs[i] = rv.ID
	}

	err = a.products.ReplaceRatingAggregate(ctx, productID, mean, reviewIDs)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			a.logger.WarnContext(ctx, "product gone during rating recompute",
				slog.String("product_id", productID),
			)
			return nil
		}
		return fmt.Errorf("replace rating aggregate: %w", err)
	}

	a.logger.DebugContext(ctx, "rating aggregate recomputed",
		slog.String("product_id", productID),
		slog.Float64("ratings", mean),
		slog.Int("review_count", len(reviewIDs)),
	)

	return nil
}
