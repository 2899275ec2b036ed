package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/gateway"
	apperrors "github.com/Harshwardhan-rawani/ShopEZ/pkg/errors"
)

// CreateSessionInput holds the parameters for opening a payment session.
// Amount is in minor currency units.
type CreateSessionInput struct {
	Amount        int64
	Currency      string
	CustomerEmail string
	CustomerPhone string
}

// PaymentSession is the result of a successful session creation, handed to
// the storefront to launch the provider's checkout flow.
type PaymentSession struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
}

// PaymentService bridges checkout to the payment provider.
type PaymentService struct {
	provider gateway.Provider
	now      func() time.Time
	rng      *rand.Rand
	logger   *slog.Logger
}

// NewPaymentService creates a new payment service. The clock and random
// source feed order id generation and are injectable for tests.
func NewPaymentService(provider gateway.Provider, now func() time.Time, rng *rand.Rand, logger *slog.Logger) *PaymentService {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PaymentService{
		provider: provider,
		now:      now,
		rng:      rng,
		logger:   logger,
	}
}

// GenerateOrderID builds a provider-facing order reference from a timestamp
// and a random source: ORD_<unix milliseconds>_<0-999>.
func GenerateOrderID(now time.Time, rng *rand.Rand) string {
	return fmt.Sprintf("ORD_%d_%d", now.UnixMilli(), rng.Intn(1000))
}

// CreateSession opens a payment session with the configured provider. A
// provider failure is surfaced once, raw payload attached; there are no
// retries at this layer.
func (s *PaymentService) CreateSession(ctx context.Context, input *CreateSessionInput) (*PaymentSession, error) {
	if input.Amount <= 0 {
		return nil, apperrors.InvalidInput("order amount must be greater than zero")
	}
	if input.CustomerEmail == "" {
		return nil, apperrors.InvalidInput("customer email is required")
	}
	if input.CustomerPhone == "" {
		return nil, apperrors.InvalidInput("customer phone is required")
	}

	currency := input.Currency
	if currency == "" {
		currency = "INR"
	}

	orderID := GenerateOrderID(s.now(), s.rng)

	session, err := s.provider.CreateSession(ctx, &gateway.SessionRequest{
		OrderID:       orderID,
		Amount:        input.Amount,
		Currency:      currency,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
	})
	if err != nil {
		var gwErr *gateway.Error
		if errors.As(err, &gwErr) {
			s.logger.ErrorContext(ctx, "payment session creation failed",
				slog.String("provider", gwErr.Provider),
				slog.String("order_id", orderID),
				slog.Int("upstream_status", gwErr.StatusCode),
			)
			return nil, apperrors.PaymentGateway(err, gwErr.Raw)
		}
		return nil, apperrors.PaymentGateway(err, nil)
	}

	s.logger.InfoContext(ctx, "payment session created",
		slog.String("provider", s.provider.Name()),
		slog.String("order_id", orderID),
	)

	return &PaymentSession{
		OrderID:          session.OrderID,
		PaymentSessionID: session.PaymentSessionID,
	}, nil
}
