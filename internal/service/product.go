package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/repository"
	apperrors "github.com/Harshwardhan-rawani/ShopEZ/pkg/errors"
)

// Defaults for the storefront landing and recommendation queries.
const (
	categoryPreviewCategories = 20
	categoryPreviewPerGroup   = 4
	recommendationLimit       = 8
)

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name        string
	Brand       string
	Description string
	Category    string
	SellerID    string
	Price       int64
	Stock       int
	Discount    int
	Images      []string
}

// UpdateProductInput holds the parameters for updating a product.
type UpdateProductInput struct {
	Name        string
	Brand       string
	Description string
	Category    string
	Price       int64
	Stock       int
	Discount    int
	Sold        int
	Images      []string
}

// ProductService implements the business logic for catalog operations.
type ProductService struct {
	repo   repository.ProductRepository
	logger *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// Create adds a new product to the catalog. The rating aggregate starts
// empty: no reviews, mean 0.
func (s *ProductService) Create(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if input.Brand == "" {
		return nil, apperrors.InvalidInput("brand is required")
	}
	if input.SellerID == "" {
		return nil, apperrors.InvalidInput("seller id is required")
	}
	if input.Price <= 0 {
		return nil, apperrors.InvalidInput("price must be greater than zero")
	}
	if input.Stock < 0 {
		return nil, apperrors.InvalidInput("stock cannot be negative")
	}
	if len(input.Images) == 0 {
		return nil, apperrors.InvalidInput("at least one image is required")
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Brand:       input.Brand,
		Description: input.Description,
		Category:    input.Category,
		SellerID:    input.SellerID,
		Price:       input.Price,
		Stock:       input.Stock,
		Discount:    input.Discount,
		Images:      input.Images,
		Ratings:     0,
		Reviews:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("seller_id", product.SellerID),
	)

	return product, nil
}

// Get retrieves a product by its ID.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// List returns a filtered, paginated list of products.
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// Update modifies an existing product. The rating aggregate is untouched.
func (s *ProductService) Update(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Price <= 0 {
		return nil, apperrors.InvalidInput("price must be greater than zero")
	}
	if len(input.Images) == 0 {
		return nil, apperrors.InvalidInput("at least one image is required")
	}

	product.Name = input.Name
	product.Brand = input.Brand
	product.Description = input.Description
	product.Category = input.Category
	product.Price = input.Price
	product.Stock = input.Stock
	product.Discount = input.Discount
	product.Sold = input.Sold
	product.Images = input.Images

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", id))

	return product, nil
}

// Delete removes a product from the catalog.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))

	return nil
}

// ByCategory returns the landing-page preview: up to 4 products for each of
// the first 20 categories, grouped by category.
func (s *ProductService) ByCategory(ctx context.Context) (map[string][]domain.Product, error) {
	products, err := s.repo.ListByCategoryPreview(ctx, categoryPreviewCategories, categoryPreviewPerGroup)
	if err != nil {
		return nil, fmt.Errorf("list products by category: %w", err)
	}

	grouped := make(map[string][]domain.Product)
	for _, p := range products {
		grouped[p.Category] = append(grouped[p.Category], p)
	}

	return grouped, nil
}

// Recommendations returns up to 8 products from the given categories,
// excluding the given ids, best rated and best selling first.
func (s *ProductService) Recommendations(ctx context.Context, categories, excludeIDs []string) ([]domain.Product, error) {
	if len(categories) == 0 {
		return []domain.Product{}, nil
	}

	products, err := s.repo.ListRecommendations(ctx, categories, excludeIDs, recommendationLimit)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}

	return products, nil
}
