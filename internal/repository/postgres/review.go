package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/database"
	apperrors "github.com/Harshwardhan-rawani/ShopEZ/pkg/errors"
)

const reviewColumns = "id, product_id, user_id, rating, body, user_name, created_at, updated_at"

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
// The UNIQUE (product_id, user_id) index is the authoritative guard against
// concurrent duplicate reviews.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new product review into the database. A unique-constraint
// violation (a raced duplicate insert) is reported as ErrDuplicate.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO product_reviews (id, product_id, user_id, rating, body, user_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.ProductID,
		review.UserID,
		review.Rating,
		review.Body,
		review.UserName,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Duplicate("you have already reviewed this product")
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// ListByProduct returns all reviews for a product, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at DESC`, reviewColumns)

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := scanReview(rows, &rv); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}

// GetByProductAndUser retrieves the review a user left on a product.
func (r *ReviewRepository) GetByProductAndUser(ctx context.Context, productID, userID string) (*domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM product_reviews WHERE product_id = $1 AND user_id = $2`, reviewColumns)

	return r.getOne(ctx, query, productID, userID)
}

// GetByIDForUser retrieves a review scoped to its author. A review owned by a
// different user is indistinguishable from a missing one.
func (r *ReviewRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM product_reviews WHERE id = $1 AND user_id = $2`, reviewColumns)

	return r.getOne(ctx, query, id, userID)
}

// Update modifies the rating and body of an existing review. The product
// assignment never changes.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	review.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE product_reviews
		SET rating = $1, body = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5`

	ct, err := r.pool.Exec(ctx, query,
		review.Rating,
		review.Body,
		review.UpdatedAt,
		review.ID,
		review.UserID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}

	return nil
}

// Delete removes a review scoped to its author.
func (r *ReviewRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM product_reviews WHERE id = $1 AND user_id = $2`

	ct, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}

	return nil
}

func (r *ReviewRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Review, error) {
	var rv domain.Review
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&rv.ID,
		&rv.ProductID,
		&rv.UserID,
		&rv.Rating,
		&rv.Body,
		&rv.UserName,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return &rv, nil
}

func scanReview(rows pgx.Rows, rv *domain.Review) error {
	if err := rows.Scan(
		&rv.ID,
		&rv.ProductID,
		&rv.UserID,
		&rv.Rating,
		&rv.Body,
		&rv.UserName,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return fmt.Errorf("scan review row: %w", err)
	}
	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
