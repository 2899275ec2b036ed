package gateway

import (
	"context"
	"fmt"
)

// SessionRequest holds the parameters for opening a payment session.
// Amount is in minor currency units.
type SessionRequest struct {
	OrderID       string
	Amount        int64
	Currency      string
	CustomerEmail string
	CustomerPhone string
}

// Session is the gateway's answer to a session request. Raw keeps the
// unparsed upstream response for diagnostics.
type Session struct {
	PaymentSessionID string
	OrderID          string
	Raw              []byte
}

// Provider abstracts the external payment gateway.
type Provider interface {
	// Name returns the provider identifier (e.g. "cashfree", "mock").
	Name() string

	// CreateSession opens a payment session with the gateway. Gateway and
	// network failures are returned as *Error with the raw upstream payload
	// attached; no retries are attempted.
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)
}

// Error is a gateway failure carrying the raw upstream response body.
type Error struct {
	Provider   string
	StatusCode int
	Raw        []byte
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s gateway: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s gateway: status %d", e.Provider, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}
