package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/repository"
	apperrors "github.com/Harshwardhan-rawani/ShopEZ/pkg/errors"
)

// CartService implements the business logic for cart operations. Carts live
// in Redis keyed by user and expire on their own.
type CartService struct {
	repo   repository.CartRepository
	logger *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, logger *slog.Logger) *CartService {
	return &CartService{
		repo:   repo,
		logger: logger,
	}
}

// Get retrieves a user's cart. A user with no stored cart gets an empty one.
func (s *CartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			now := time.Now().UTC()
			return &domain.Cart{
				UserID:    userID,
				Items:     []domain.CartItem{},
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// Replace overwrites a user's cart with the given items.
func (s *CartService) Replace(ctx context.Context, userID string, items []domain.CartItem) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	for _, item := range items {
		if item.ProductID == "" {
			return nil, apperrors.InvalidInput("item product id is required")
		}
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be greater than zero")
		}
	}

	now := time.Now().UTC()
	cart := &domain.Cart{
		UserID:    userID,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := s.repo.Get(ctx, userID); err == nil {
		cart.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return cart, nil
}

// AddItem adds an item to a user's cart, merging quantity with any existing
// line for the same product.
func (s *CartService) AddItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if item.ProductID == "" {
		return nil, apperrors.InvalidInput("item product id is required")
	}
	if item.Quantity <= 0 {
		return nil, apperrors.InvalidInput("item quantity must be greater than zero")
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItemIndex(item.ProductID); idx >= 0 {
		cart.Items[idx].Quantity += item.Quantity
	} else {
		cart.Items = append(cart.Items, item)
	}
	cart.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.DebugContext(ctx, "cart item added",
		slog.String("user_id", userID),
		slog.String("product_id", item.ProductID),
	)

	return cart, nil
}

// Clear removes a user's cart entirely.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	return nil
}
