// Package app wires together all dependencies and runs the API server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/config"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/event"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/gateway"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/gateway/cashfree"
	gwmock "github.com/Harshwardhan-rawani/ShopEZ/internal/gateway/mock"
	handler "github.com/Harshwardhan-rawani/ShopEZ/internal/handler/http"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/repository/postgres"
	redisrepo "github.com/Harshwardhan-rawani/ShopEZ/internal/repository/redis"
	"github.com/Harshwardhan-rawani/ShopEZ/internal/service"
	"github.com/Harshwardhan-rawani/ShopEZ/migrations"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/database"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/health"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/httpclient"
	pkgkafka "github.com/Harshwardhan-rawani/ShopEZ/pkg/kafka"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/middleware"
	"github.com/Harshwardhan-rawani/ShopEZ/pkg/tracing"
)

// App holds the long-lived resources of the server process.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "shopez",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "shopez")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Initialize Redis for cart storage.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Repositories.
	productRepo := postgres.NewProductRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	cartRepo := redisrepo.NewCartRepository(rdb, time.Duration(cfg.CartTTLHours)*time.Hour)

	eventProducer := event.NewProducer(producer, logger)

	// Payment provider behind a circuit breaker. The session call is never
	// retried: a gateway failure surfaces once with the upstream payload.
	provider := newPaymentProvider(cfg, logger)

	// Services.
	aggregator := service.NewRatingAggregator(productRepo, reviewRepo, logger)
	productService := service.NewProductService(productRepo, logger)
	reviewService := service.NewReviewService(reviewRepo, userRepo, aggregator, eventProducer, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, eventProducer, logger)
	paymentService := service.NewPaymentService(provider, time.Now,
		rand.New(rand.NewSource(time.Now().UnixNano())), logger)
	cartService := service.NewCartService(cartRepo, logger)
	userService := service.NewUserService(userRepo, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(
		productService,
		reviewService,
		orderService,
		paymentService,
		cartService,
		userService,
		handler.RouterConfig{
			HealthHandler: healthHandler,
			CORS:          corsCfg,
			PprofCIDRs:    cfg.PprofAllowedCIDRs,
			Logger:        logger,
		},
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// newPaymentProvider builds the configured gateway provider. Cashfree calls
// go through a zero-retry HTTP client wrapped in a circuit breaker.
func newPaymentProvider(cfg *config.Config, logger *slog.Logger) gateway.Provider {
	if cfg.PaymentProvider == "mock" {
		logger.Info("payment provider: mock")
		return gwmock.New()
	}

	baseClient := httpclient.New(httpclient.Config{
		Timeout:         time.Duration(cfg.GatewayTimeoutSecs) * time.Second,
		MaxRetries:      0,
		MaxConnsPerHost: 50,
	})
	cbClient := httpclient.NewCircuitBreakerClient(baseClient, httpclient.CircuitBreakerConfig{
		Name:         "payment-gateway",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}, logger)

	logger.Info("payment provider: cashfree",
		slog.String("base_url", cfg.CashfreeBaseURL),
	)
	return cashfree.New(cashfree.Config{
		BaseURL:      cfg.CashfreeBaseURL,
		ClientID:     cfg.CashfreeClientID,
		ClientSecret: cfg.CashfreeClientSecret,
	}, cbClient)
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: the HTTP server drains first so
// in-flight request spans are captured by the tracer flush, then the
// producer and the stores close.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
