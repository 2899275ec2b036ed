package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/domain"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/service"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/httputil"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/pagination"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/validator"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// OrderItemRequest is a single line item in a checkout request.
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required,min=1,max=500"`
	Image     string `json:"image"`
	Price     int64  `json:"price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// ShippingInfoRequest is the shipping block of a checkout request.
type ShippingInfoRequest struct {
	FirstName string `json:"first_name" validate:"required,max=255"`
	LastName  string `json:"last_name" validate:"max=255"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"max=50"`
	Address   string `json:"address" validate:"required,max=500"`
	City      string `json:"city" validate:"max=255"`
	State     string `json:"state" validate:"max=255"`
	Zip       string `json:"zip" validate:"max=50"`
	Country   string `json:"country" validate:"max=255"`
}

// CreateOrderRequest is the JSON request body for placing an order after
// checkout. PaymentVerified is reported by the storefront once the provider
// confirms the payment; it is trusted as given.
type CreateOrderRequest struct {
	UserID          *string              `json:"user_id"`
	Items           []OrderItemRequest   `json:"items" validate:"required,min=1,dive"`
	ShippingInfo    *ShippingInfoRequest `json:"shipping_info" validate:"required"`
	ShippingMethod  string               `json:"shipping_method" validate:"max=100"`
	PaymentVerified bool                 `json:"payment_verified"`
}

// UpdateOrderStatusRequest is the JSON request body for a status change.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateOrderInput{
		UserID:         req.UserID,
		ShippingMethod: req.ShippingMethod,
		ShippingInfo: &domain.ShippingInfo{
			FirstName: req.ShippingInfo.FirstName,
			LastName:  req.ShippingInfo.LastName,
			Email:     req.ShippingInfo.Email,
			Phone:     req.ShippingInfo.Phone,
			Address:   req.ShippingInfo.Address,
			City:      req.ShippingInfo.City,
			State:     req.ShippingInfo.State,
			Zip:       req.ShippingInfo.Zip,
			Country:   req.ShippingInfo.Country,
		},
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.OrderItemInput{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.service.CreateAfterPayment(r.Context(), input, req.PaymentVerified)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// Get handles GET /api/v1/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := service.OrderListFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	if v := r.URL.Query().Get("user_id"); v != "" {
		filter.UserID = &v
	}
	if v := r.URL.Query().Get("seller_id"); v != "" {
		filter.SellerID = &v
	}

	orders, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, filter.Page, filter.PerPage))
}

// UpdateStatus handles PATCH /api/v1/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req UpdateOrderStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.UpdateStatus(r.Context(), id, req.Status); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"id":     id,
		"status": req.Status,
	}})
}

// CustomerDetails handles GET /api/v1/orders/{id}/customer
func (h *OrderHandler) CustomerDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.CustomerDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: details})
}
