package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/event"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/repository"
	apperrors "github.com/Harshwardhan-rawani/ShopEZ/pkg/errors"
)

// OrderItemInput is a single line item captured at checkout time.
type OrderItemInput struct {
	ProductID string
	Name      string
	Image     string
	Price     int64
	Quantity  int
}

// CreateOrderInput holds the parameters for assembling an order. Item names,
// images and prices are snapshotted as submitted; later catalog edits do not
// rewrite history.
type CreateOrderInput struct {
	UserID         *string
	Items          []OrderItemInput
	ShippingInfo   *domain.ShippingInfo
	ShippingMethod string
}

// OrderListFilter selects orders for a customer, a seller, or both.
type OrderListFilter struct {
	UserID   *string
	SellerID *string
	Page     int
	PerPage  int
}

// OrderItemDetail is a line item enriched with its extended total.
type OrderItemDetail struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Total     int64  `json:"total"`
}

// CustomerDetails is the fulfillment view of an order: who placed it, where
// it ships, and what it contains.
type CustomerDetails struct {
	OrderID         string                  `json:"order_id"`
	Customer        *domain.CustomerSummary `json:"customer,omitempty"`
	FullName        string                  `json:"full_name"`
	Email           string                  `json:"email,omitempty"`
	Phone           string                  `json:"phone,omitempty"`
	CompleteAddress string                  `json:"complete_address"`
	ShippingMethod  string                  `json:"shipping_method,omitempty"`
	Items           []OrderItemDetail       `json:"items"`
	Total           int64                   `json:"total"`
}

// OrderService implements the business logic for order assembly and
// lifecycle operations.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// Create assembles and persists a pending, unpaid order.
func (s *OrderService) Create(ctx context.Context, input *CreateOrderInput) (*domain.Order, error) {
	return s.create(ctx, input, domain.OrderStatusPending, domain.PaymentStatusUnpaid)
}

// CreateAfterPayment assembles an order for a checkout the caller reports as
// paid. The verification flag is trusted as given: when false nothing is
// persisted and the checkout is rejected.
func (s *OrderService) CreateAfterPayment(ctx context.Context, input *CreateOrderInput, paymentVerified bool) (*domain.Order, error) {
	if !paymentVerified {
		return nil, apperrors.PaymentNotVerified()
	}
	return s.create(ctx, input, domain.OrderStatusPaid, domain.PaymentStatusPaid)
}

func (s *OrderService) create(ctx context.Context, input *CreateOrderInput, status, paymentStatus string) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	if input.ShippingInfo == nil {
		return nil, apperrors.InvalidInput("shipping info is required")
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:             uuid.New().String(),
		UserID:         input.UserID,
		Status:         status,
		PaymentStatus:  paymentStatus,
		ShippingMethod: input.ShippingMethod,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	info := *input.ShippingInfo
	order.ShippingInfo = &info

	order.Items = make([]domain.OrderItem, 0, len(input.Items))
	var total int64
	for _, in := range input.Items {
		if in.ProductID == "" {
			return nil, apperrors.InvalidInput("item product id is required")
		}
		if in.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be greater than zero")
		}
		item := domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: in.ProductID,
			Name:      in.Name,
			Image:     in.Image,
			Price:     in.Price,
			Quantity:  in.Quantity,
		}
		total += item.LineTotal()
		order.Items = append(order.Items, item)
	}
	order.Total = total

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("status", order.Status),
		slog.Int64("total", order.Total),
	)

	s.publishCreated(ctx, order)

	return order, nil
}

// Get retrieves an order by its ID.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// List returns orders newest first, each joined with its customer summary.
// A seller filter keeps orders containing at least one of the seller's
// products.
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]repository.OrderWithCustomer, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	repoFilter := repository.OrderFilter{
		UserID:  filter.UserID,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}

	if filter.SellerID != nil {
		productIDs, err := s.products.ListIDsBySeller(ctx, *filter.SellerID)
		if err != nil {
			return nil, 0, fmt.Errorf("list seller product ids: %w", err)
		}
		if productIDs == nil {
			productIDs = []string{}
		}
		repoFilter.SellerProductIDs = productIDs
	}

	orders, total, err := s.orders.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus sets an order's status to any member of the lifecycle set.
// There is no transition graph: support workflows move orders in either
// direction.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) error {
	if !domain.IsValidStatus(status) {
		return apperrors.InvalidInput(fmt.Sprintf("invalid order status: %s", status))
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get order for status update: %w", err)
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", id),
		slog.String("old_status", order.Status),
		slog.String("status", status),
	)

	s.publishStatusChanged(ctx, id, order.Status, status)

	return nil
}

// CustomerDetails builds the fulfillment view of an order: contact fields,
// the flattened shipping address, and per-item extended totals. It reads
// only; the order is untouched.
func (s *OrderService) CustomerDetails(ctx context.Context, orderID string) (*CustomerDetails, error) {
	oc, err := s.orders.GetWithCustomer(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order with customer: %w", err)
	}

	details := &CustomerDetails{
		OrderID:        oc.Order.ID,
		Customer:       oc.Customer,
		ShippingMethod: oc.Order.ShippingMethod,
		Items:          make([]OrderItemDetail, 0, len(oc.Order.Items)),
		Total:          oc.Order.Total,
	}

	if info := oc.Order.ShippingInfo; info != nil {
		details.FullName = info.FullName()
		details.Email = info.Email
		details.Phone = info.Phone
		details.CompleteAddress = info.CompleteAddress()
	}

	for _, item := range oc.Order.Items {
		details.Items = append(details.Items, OrderItemDetail{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Total:     item.LineTotal(),
		})
	}

	return details, nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *domain.Order) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.WarnContext(ctx, "failed to publish order created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *OrderService) publishStatusChanged(ctx context.Context, orderID, oldStatus, status string) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishOrderStatusChanged(ctx, orderID, oldStatus, status); err != nil {
		s.logger.WarnContext(ctx, "failed to publish order status event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}
}
