package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/gateway"
)

// API version pinned to what the dashboard credentials were issued for.
const apiVersion = "2023-08-01"

// Doer is the outbound HTTP client seam, satisfied by pkg/httpclient's
// Client and CircuitBreakerClient.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds the Cashfree credentials and endpoint.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

// Provider implements gateway.Provider against the Cashfree PG sandbox/live
// REST API.
type Provider struct {
	cfg    Config
	client Doer
}

// New creates a Cashfree payment provider. The client must be configured
// with zero retries: gateway failures propagate to the caller as-is.
func New(cfg Config, client Doer) *Provider {
	return &Provider{cfg: cfg, client: client}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "cashfree"
}

type orderRequest struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type orderResponse struct {
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
}

// CreateSession opens a payment session with Cashfree. Any non-2xx response
// or transport failure comes back as *gateway.Error with the raw upstream
// body preserved.
func (p *Provider) CreateSession(ctx context.Context, req *gateway.SessionRequest) (*gateway.Session, error) {
	payload := orderRequest{
		OrderID:       req.OrderID,
		OrderAmount:   float64(req.Amount) / 100,
		OrderCurrency: req.Currency,
		CustomerDetails: customerDetails{
			CustomerID:    req.OrderID,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal cashfree order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/pg/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create cashfree request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", p.cfg.ClientID)
	httpReq.Header.Set("x-client-secret", p.cfg.ClientSecret)
	httpReq.Header.Set("x-api-version", apiVersion)

	resp, err := p.client.Do(ctx, httpReq)
	if err != nil {
		return nil, &gateway.Error{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &gateway.Error{Provider: p.Name(), StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &gateway.Error{Provider: p.Name(), StatusCode: resp.StatusCode, Raw: raw}
	}

	var parsed orderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &gateway.Error{Provider: p.Name(), StatusCode: resp.StatusCode, Raw: raw, Err: err}
	}

	if parsed.PaymentSessionID == "" {
		return nil, &gateway.Error{Provider: p.Name(), StatusCode: resp.StatusCode, Raw: raw, Err: fmt.Errorf("missing payment_session_id")}
	}

	return &gateway.Session{
		PaymentSessionID: parsed.PaymentSessionID,
		OrderID:          parsed.OrderID,
		Raw:              raw,
	}, nil
}
