package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/repository"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/database"
	apperrors "github.com/Harshwardhan-rawani/ShopEZ/pkg/errors"
)

const productColumns = "id, name, brand, description, category, seller_id, price, stock, discount, sold, images, ratings, reviews, created_at, updated_at"

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, brand, description, category, seller_id, price, stock, discount, sold, images, ratings, reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Brand,
		p.Description,
		p.Category,
		p.SellerID,
		p.Price,
		p.Stock,
		p.Discount,
		p.Sold,
		p.Images,
		p.Ratings,
		p.Reviews,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	var p domain.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Brand,
		&p.Description,
		&p.Category,
		&p.SellerID,
		&p.Price,
		&p.Stock,
		&p.Discount,
		&p.Sold,
		&p.Images,
		&p.Ratings,
		&p.Reviews,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.SellerID != nil {
		conditions = append(conditions, fmt.Sprintf("seller_id = $%d", argIndex))
		args = append(args, *filter.SellerID)
		argIndex++
	}

	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, *filter.Category)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, totalCount, err := scanProductRows(rows, true)
	if err != nil {
		return nil, 0, err
	}

	return products, totalCount, nil
}

// Update modifies an existing product in the database. The ratings and
// reviews aggregate fields are deliberately left out: only
// ReplaceRatingAggregate writes them.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, brand = $2, description = $3, category = $4,
		    price = $5, stock = $6, discount = $7, sold = $8, images = $9, updated_at = $10
		WHERE id = $11`

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Brand,
		p.Description,
		p.Category,
		p.Price,
		p.Stock,
		p.Discount,
		p.Sold,
		p.Images,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product from the database by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// ReplaceRatingAggregate atomically replaces the mean rating and review-id
// set of a product in a single UPDATE.
func (r *ProductRepository) ReplaceRatingAggregate(ctx context.Context, productID string, ratings float64, reviewIDs []string) error {
	query := `
		UPDATE products
		SET ratings = $1, reviews = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, ratings, reviewIDs, time.Now().UTC(), productID)
	if err != nil {
		return fmt.Errorf("replace rating aggregate: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", productID)
	}

	return nil
}

// ListIDsBySeller returns the ids of all products owned by the given seller.
func (r *ProductRepository) ListIDsBySeller(ctx context.Context, sellerID string) ([]string, error) {
	query := `SELECT id FROM products WHERE seller_id = $1`

	rows, err := r.pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list product ids by seller: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product id rows: %w", err)
	}

	return ids, nil
}

// ListByCategoryPreview returns up to perCategory newest products for each of
// the first maxCategories categories.
func (r *ProductRepository) ListByCategoryPreview(ctx context.Context, maxCategories, perCategory int) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM (
			SELECT %s, row_number() OVER (PARTITION BY category ORDER BY created_at DESC) AS rn
			FROM products
			WHERE category IN (
				SELECT DISTINCT category FROM products ORDER BY category LIMIT $1
			)
		) ranked
		WHERE rn <= $2
		ORDER BY category, created_at DESC`,
		productColumns, productColumns,
	)

	rows, err := r.pool.Query(ctx, query, maxCategories, perCategory)
	if err != nil {
		return nil, fmt.Errorf("list products by category preview: %w", err)
	}
	defer rows.Close()

	products, _, err := scanProductRows(rows, false)
	return products, err
}

// ListRecommendations returns up to limit products from the given categories,
// excluding the given ids, ordered by rating then units sold.
func (r *ProductRepository) ListRecommendations(ctx context.Context, categories, excludeIDs []string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	if excludeIDs == nil {
		excludeIDs = []string{}
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE category = ANY($1) AND NOT (id = ANY($2))
		ORDER BY ratings DESC, sold DESC
		LIMIT $3`,
		productColumns,
	)

	rows, err := r.pool.Query(ctx, query, categories, excludeIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("list product recommendations: %w", err)
	}
	defer rows.Close()

	products, _, err := scanProductRows(rows, false)
	return products, err
}

// scanProductRows collects product rows, optionally scanning a trailing
// count(*) OVER() column.
func scanProductRows(rows pgx.Rows, withTotal bool) ([]domain.Product, int, error) {
	var totalCount int
	products := []domain.Product{}

	for rows.Next() {
		var p domain.Product

		dest := []any{
			&p.ID,
			&p.Name,
			&p.Brand,
			&p.Description,
			&p.Category,
			&p.SellerID,
			&p.Price,
			&p.Stock,
			&p.Discount,
			&p.Sold,
			&p.Images,
			&p.Ratings,
			&p.Reviews,
			&p.CreatedAt,
			&p.UpdatedAt,
		}
		if withTotal {
			dest = append(dest, &totalCount)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}
