package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/repository"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/service"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/httputil"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/pagination"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/validator"
)

const maxBodyBytes = 1 << 20 // 1 MB

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=500"`
	Brand       string   `json:"brand" validate:"required,min=1,max=255"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"max=255"`
	SellerID    string   `json:"seller_id" validate:"required"`
	Price       int64    `json:"price" validate:"required,gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Discount    int      `json:"discount" validate:"gte=0,lte=100"`
	Images      []string `json:"images" validate:"required,min=1,dive,required"`
}

// UpdateProductRequest is the JSON request body for updating a product.
type UpdateProductRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=500"`
	Brand       string   `json:"brand" validate:"required,min=1,max=255"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"max=255"`
	Price       int64    `json:"price" validate:"required,gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Discount    int      `json:"discount" validate:"gte=0,lte=100"`
	Sold        int      `json:"sold" validate:"gte=0"`
	Images      []string `json:"images" validate:"required,min=1,dive,required"`
}

// RecommendationsRequest is the JSON request body for product recommendations.
type RecommendationsRequest struct {
	Categories []string `json:"categories"`
	ExcludeIDs []string `json:"exclude_ids"`
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.Create(r.Context(), &service.CreateProductInput{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Category:    req.Category,
		SellerID:    req.SellerID,
		Price:       req.Price,
		Stock:       req.Stock,
		Discount:    req.Discount,
		Images:      req.Images,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.ProductFilter{
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	if v := r.URL.Query().Get("seller_id"); v != "" {
		filter.SellerID = &v
	}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}

	products, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, filter.Page, filter.PerPage))
}

// Update handles PUT /api/v1/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &service.UpdateProductInput{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Discount:    req.Discount,
		Sold:        req.Sold,
		Images:      req.Images,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Delete handles DELETE /api/v1/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ByCategory handles GET /api/v1/products/by-category
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.service.ByCategory(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: grouped})
}

// Recommendations handles POST /api/v1/products/recommendations.
func (h *ProductHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req RecommendationsRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	products, err := h.service.Recommendations(r.Context(), req.Categories, req.ExcludeIDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}
