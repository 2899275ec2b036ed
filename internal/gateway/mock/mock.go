// Package mock provides a payment provider for local development and tests.
package mock

import (
	"context"
	"fmt"

	"github.com/Harshwardhan-rawani/ShopEZ/internal/gateway"
)

// Provider implements gateway.Provider without talking to any real gateway.
type Provider struct {
	// FailWith, when set, is returned from CreateSession to simulate a
	// gateway failure.
	FailWith *gateway.Error
}

// New creates a mock payment provider.
func New() *Provider {
	return &Provider{}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "mock"
}

// CreateSession returns a deterministic session derived from the order id.
func (p *Provider) CreateSession(_ context.Context, req *gateway.SessionRequest) (*gateway.Session, error) {
	if p.FailWith != nil {
		return nil, p.FailWith
	}

	return &gateway.Session{
		PaymentSessionID: fmt.Sprintf("session_%s", req.OrderID),
		OrderID:          req.OrderID,
		Raw:              []byte(fmt.Sprintf(`{"order_id":%q,"payment_session_id":"session_%s"}`, req.OrderID, req.OrderID)),
	}, nil
}
