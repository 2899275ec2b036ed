package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/service"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/health"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/middleware"
)

// RouterConfig carries the non-service dependencies of the HTTP router.
type RouterConfig struct {
	HealthHandler *health.Handler
	CORS          middleware.CORSConfig
	PprofCIDRs    []string
	Logger        *slog.Logger
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	products *service.ProductService,
	reviews *service.ReviewService,
	orders *service.OrderService,
	payments *service.PaymentService,
	carts *service.CartService,
	users *service.UserService,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing("shopez"))
	r.Use(middleware.Identity)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("shopez"))

	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	productHandler := NewProductHandler(products, cfg.Logger)
	reviewHandler := NewReviewHandler(reviews, cfg.Logger)
	orderHandler := NewOrderHandler(orders, cfg.Logger)
	paymentHandler := NewPaymentHandler(payments, cfg.Logger)
	cartHandler := NewCartHandler(carts, cfg.Logger)
	userHandler := NewUserHandler(users, cfg.Logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", productHandler.Create)
		r.Get("/", productHandler.List)

		// Fixed paths must come before /{id} to avoid conflict.
		r.With(middleware.CacheControl(60)).Get("/by-category", productHandler.ByCategory)
		r.Post("/recommendations", productHandler.Recommendations)

		r.Get("/{id}", productHandler.Get)
		r.Put("/{id}", productHandler.Update)
		r.Delete("/{id}", productHandler.Delete)
		r.Get("/{id}/reviews", reviewHandler.List)
		r.Post("/{id}/reviews", reviewHandler.Create)
	})

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Put("/{id}", reviewHandler.Update)
		r.Delete("/{id}", reviewHandler.Delete)
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", orderHandler.Create)
		r.Get("/", orderHandler.List)
		r.Get("/{id}", orderHandler.Get)
		r.Patch("/{id}/status", orderHandler.UpdateStatus)
		r.Get("/{id}/customer", orderHandler.CustomerDetails)
	})

	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/session", paymentHandler.CreateSession)
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", cartHandler.Get)
		r.Put("/", cartHandler.Replace)
		r.Delete("/", cartHandler.Clear)
		r.Post("/items", cartHandler.AddItem)
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", userHandler.Create)
		r.Get("/{id}", userHandler.Get)
	})

	return r
}
