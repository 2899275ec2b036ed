package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/gateway"
	apperrors "github.com/Harshwardhan-rawani/ShopEZ/pkg/errors"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) CreateSession(ctx context.Context, req *gateway.SessionRequest) (*gateway.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Session), args.Error(1)
}

// --- GenerateOrderID Tests ---

func TestGenerateOrderID(t *testing.T) {
	t.Run("matches ORD_millis_suffix shape", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		rng := rand.New(rand.NewSource(42))

		id := GenerateOrderID(now, rng)

		pattern := regexp.MustCompile(`^ORD_(\d+)_(\d{1,3})$`)
		matches := pattern.FindStringSubmatch(id)
		require.NotNil(t, matches, "unexpected order id %q", id)

		millis, err := strconv.ParseInt(matches[1], 10, 64)
		require.NoError(t, err)
		assert.Equal(t, now.UnixMilli(), millis)

		suffix, err := strconv.Atoi(matches[2])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, suffix, 0)
		assert.Less(t, suffix, 1000)
	})

	t.Run("deterministic for a fixed clock and seed", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		first := GenerateOrderID(now, rand.New(rand.NewSource(7)))
		second := GenerateOrderID(now, rand.New(rand.NewSource(7)))

		assert.Equal(t, first, second)
	})

	t.Run("suffix stays within bounds over many draws", func(t *testing.T) {
		now := time.Now()
		rng := rand.New(rand.NewSource(1))

		for i := 0; i < 1000; i++ {
			id := GenerateOrderID(now, rng)
			suffix := id[strings.LastIndex(id, "_")+1:]
			n, err := strconv.Atoi(suffix)
			require.NoError(t, err)
			require.True(t, n >= 0 && n <= 999, "suffix %d out of range", n)
		}
	})
}

// --- CreateSession Tests ---

func TestPaymentService_CreateSession(t *testing.T) {
	ctx := context.Background()
	fixedNow := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	newService := func(provider gateway.Provider) *PaymentService {
		return NewPaymentService(provider,
			func() time.Time { return fixedNow },
			rand.New(rand.NewSource(42)),
			newTestLogger(),
		)
	}

	validInput := func() *CreateSessionInput {
		return &CreateSessionInput{
			Amount:        129900,
			Currency:      "INR",
			CustomerEmail: "jane@example.com",
			CustomerPhone: "+915550100",
		}
	}

	t.Run("opens session with generated order id", func(t *testing.T) {
		provider := new(mockProvider)
		svc := newService(provider)

		expectedOrderID := GenerateOrderID(fixedNow, rand.New(rand.NewSource(42)))
		provider.On("CreateSession", ctx, mock.MatchedBy(func(req *gateway.SessionRequest) bool {
			return req.OrderID == expectedOrderID &&
				req.Amount == int64(129900) &&
				req.Currency == "INR" &&
				req.CustomerEmail == "jane@example.com"
		})).Return(&gateway.Session{
			OrderID:          expectedOrderID,
			PaymentSessionID: "session_abc123",
		}, nil)

		session, err := svc.CreateSession(ctx, validInput())

		require.NoError(t, err)
		assert.Equal(t, "session_abc123", session.PaymentSessionID)
		assert.Equal(t, expectedOrderID, session.OrderID)
		provider.AssertExpectations(t)
	})

	t.Run("provider failure surfaces raw upstream payload once", func(t *testing.T) {
		provider := new(mockProvider)
		svc := newService(provider)

		raw := []byte(`{"message":"order_amount exceeds limit","code":"order_amount_invalid"}`)
		gwErr := &gateway.Error{
			Provider:   "cashfree",
			StatusCode: 400,
			Raw:        raw,
			Err:        fmt.Errorf("unexpected status 400"),
		}
		provider.On("CreateSession", ctx, mock.Anything).Return(nil, gwErr)

		session, err := svc.CreateSession(ctx, validInput())

		require.Error(t, err)
		assert.Nil(t, session)
		assert.ErrorIs(t, err, apperrors.ErrPaymentGateway)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, raw, appErr.Raw)
		provider.AssertNumberOfCalls(t, "CreateSession", 1)
	})

	t.Run("transport failure is a gateway error without payload", func(t *testing.T) {
		provider := new(mockProvider)
		svc := newService(provider)

		provider.On("CreateSession", ctx, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

		_, err := svc.CreateSession(ctx, validInput())

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrPaymentGateway)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		provider := new(mockProvider)
		svc := newService(provider)

		input := validInput()
		input.Amount = 0

		_, err := svc.CreateSession(ctx, input)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		provider.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
	})

	t.Run("defaults currency to INR", func(t *testing.T) {
		provider := new(mockProvider)
		svc := newService(provider)

		provider.On("CreateSession", ctx, mock.MatchedBy(func(req *gateway.SessionRequest) bool {
			return req.Currency == "INR"
		})).Return(&gateway.Session{OrderID: "x", PaymentSessionID: "session_x"}, nil)

		input := validInput()
		input.Currency = ""

		_, err := svc.CreateSession(ctx, input)

		require.NoError(t, err)
		provider.AssertExpectations(t)
	})
}
