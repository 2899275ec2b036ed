package http

import (
	"log/slog"
	"net/http"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/service"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/httputil"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/validator"
)

// PaymentHandler handles HTTP requests for payment session endpoints.
type PaymentHandler struct {
	service *service.PaymentService
	logger  *slog.Logger
}

// NewPaymentHandler creates a new payment HTTP handler.
func NewPaymentHandler(svc *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateSessionRequest is the JSON request body for opening a payment
// session. OrderAmount is in minor currency units.
type CreateSessionRequest struct {
	OrderAmount   int64  `json:"order_amount" validate:"required,gt=0"`
	Currency      string `json:"currency" validate:"omitempty,len=3"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone" validate:"required,max=50"`
}

// CreateSession handles POST /api/v1/payments/session
func (h *PaymentHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateSessionRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	session, err := h.service.CreateSession(r.Context(), &service.CreateSessionInput{
		Amount:        req.OrderAmount,
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: session})
}
