package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/event"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/repository"
	apperrors "github.com/Harshwardhan-rawani/ShopEZ/pkg/errors"
)

// ReviewService implements the business logic for review operations. Every
// mutation re-aggregates the product's rating through the RatingAggregator;
// aggregation failures are logged, never surfaced, since the review write
// itself already succeeded.
type ReviewService struct {
	reviews    repository.ReviewRepository
	users      repository.UserRepository
	aggregator *RatingAggregator
	producer   *event.Producer
	logger     *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviews repository.ReviewRepository,
	users repository.UserRepository,
	aggregator *RatingAggregator,
	producer *event.Producer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		users:      users,
		aggregator: aggregator,
		producer:   producer,
		logger:     logger,
	}
}

// List returns all reviews for a product, newest first, each carrying the
// author display name stored at creation time.
func (s *ReviewService) List(ctx context.Context, productID string) ([]domain.Review, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}

// Create submits a new review. The pre-check on (product, user) gives a
// friendly duplicate message, but the store's unique constraint is the
// authoritative guard: a concurrent duplicate insert that slips past the
// pre-check still fails with ErrDuplicate.
func (s *ReviewService) Create(ctx context.Context, productID, userID string, rating int, body string) (*domain.Review, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if !domain.IsValidRating(rating) {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	if _, err := s.reviews.GetByProductAndUser(ctx, productID, userID); err == nil {
		return nil, apperrors.Duplicate("you have already reviewed this product")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing review: %w", err)
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get review author: %w", err)
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Body:      body,
		UserName:  author.DisplayName(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.recompute(ctx, review.ProductID)
	s.publish(ctx, s.producer.PublishReviewCreated, review, "review.created")

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.String("user_id", review.UserID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// Update modifies the caller's own review. Ownership is enforced by equality:
// a review that exists but belongs to someone else is reported as not found,
// indistinguishable from a missing one. The product assignment never changes.
func (s *ReviewService) Update(ctx context.Context, reviewID, userID string, rating int, body string) (*domain.Review, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if !domain.IsValidRating(rating) {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	review, err := s.reviews.GetByIDForUser(ctx, reviewID, userID)
	if err != nil {
		return nil, fmt.Errorf("get review for update: %w", err)
	}

	review.Rating = rating
	review.Body = body

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.recompute(ctx, review.ProductID)
	s.publish(ctx, s.producer.PublishReviewUpdated, review, "review.updated")

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// Delete removes the caller's own review, then re-aggregates the former
// product: it loses this review from both its mean and its key-set, and a
// sole review resets the mean to 0.
func (s *ReviewService) Delete(ctx context.Context, reviewID, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	review, err := s.reviews.GetByIDForUser(ctx, reviewID, userID)
	if err != nil {
		return fmt.Errorf("get review for delete: %w", err)
	}

	if err := s.reviews.Delete(ctx, reviewID, userID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.recompute(ctx, review.ProductID)
	s.publish(ctx, s.producer.PublishReviewDeleted, review, "review.deleted")

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", reviewID),
		slog.String("product_id", review.ProductID),
	)

	return nil
}

// recompute triggers best-effort aggregation. The review mutation already
// succeeded; a failed recompute leaves the aggregate stale until the next
// mutation on the same product.
func (s *ReviewService) recompute(ctx context.Context, productID string) {
	if err := s.aggregator.Recompute(ctx, productID); err != nil {
		s.logger.ErrorContext(ctx, "rating recompute failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ReviewService) publish(ctx context.Context, fn func(context.Context, *domain.Review) error, review *domain.Review, name string) {
	if s.producer == nil {
		return
	}
	if err := fn(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish "+name+" event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
}
