package repository

import (
	"context"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	SellerID *string
	Category *string
	Page     int
	PerPage  int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the given filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update modifies an existing product. The ratings and reviews fields are
	// not written by this method.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// ReplaceRatingAggregate atomically replaces the product's mean rating and
	// review-id set in a single write. Only the rating aggregator calls this.
	ReplaceRatingAggregate(ctx context.Context, productID string, ratings float64, reviewIDs []string) error

	// ListIDsBySeller returns the ids of all products owned by the seller.
	ListIDsBySeller(ctx context.Context, sellerID string) ([]string, error)

	// ListByCategoryPreview returns up to perCategory products for each of the
	// first maxCategories categories, for the storefront landing page.
	ListByCategoryPreview(ctx context.Context, maxCategories, perCategory int) ([]domain.Product, error)

	// ListRecommendations returns up to limit products from the given
	// categories, excluding the given ids, best rated and best selling first.
	ListRecommendations(ctx context.Context, categories, excludeIDs []string, limit int) ([]domain.Product, error)
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review. A concurrent duplicate for the same
	// (product, user) pair fails with ErrDuplicate via the store's unique
	// constraint.
	Create(ctx context.Context, review *domain.Review) error

	// ListByProduct returns all reviews for a product, newest first.
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)

	// GetByProductAndUser retrieves the review a user left on a product.
	GetByProductAndUser(ctx context.Context, productID, userID string) (*domain.Review, error)

	// GetByIDForUser retrieves a review scoped to its author. A review that
	// exists but belongs to someone else is reported as not found.
	GetByIDForUser(ctx context.Context, id, userID string) (*domain.Review, error)

	// Update modifies an existing review's rating and body.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review scoped to its author.
	Delete(ctx context.Context, id, userID string) error
}

// OrderFilter defines filter criteria for listing orders. SellerProductIDs,
// when non-nil, restricts the result to orders containing at least one line
// item whose product id is in the set.
type OrderFilter struct {
	UserID           *string
	SellerProductIDs []string
	Page             int
	PerPage          int
}

// OrderWithCustomer pairs an order with the partial user projection of its
// purchaser, nil for guest orders.
type OrderWithCustomer struct {
	Order    domain.Order            `json:"order"`
	Customer *domain.CustomerSummary `json:"customer,omitempty"`
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order and its line items atomically.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its ID with its line items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetWithCustomer retrieves an order joined with its purchaser projection.
	GetWithCustomer(ctx context.Context, id string) (*OrderWithCustomer, error)

	// List returns orders matching the filter, newest first, each joined with
	// the purchaser projection, along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]OrderWithCustomer, int, error)

	// UpdateStatus sets the order's status.
	UpdateStatus(ctx context.Context, id, status string) error
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves a cart by user ID.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save persists a cart.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes a cart by user ID.
	Delete(ctx context.Context, userID string) error
}
