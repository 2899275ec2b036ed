package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicate          = errors.New("duplicate resource")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternal           = errors.New("internal error")
	ErrPaymentNotVerified = errors.New("payment not verified")
	ErrPaymentGateway     = errors.New("payment gateway error")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`

	// Raw holds the unmodified upstream payload for gateway errors. It is
	// kept for diagnostics only and never serialized to clients.
	Raw []byte `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Duplicate creates a 400 error for a uniqueness violation. The review
// constraint maps to 400 rather than 409: clients treat it as a validation
// failure, not a retryable conflict.
func Duplicate(message string) *AppError {
	return &AppError{
		Code:    "DUPLICATE",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrDuplicate,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// PaymentNotVerified creates the 400 error returned when an order-creation
// request arrives without the caller's payment-verified assertion. The
// assertion is trusted as-is; there is no server-side check against the
// gateway, so a forged flag is indistinguishable from a genuine one here.
func PaymentNotVerified() *AppError {
	return &AppError{
		Code:    "PAYMENT_NOT_VERIFIED",
		Message: "payment not verified",
		Status:  http.StatusBadRequest,
		Err:     ErrPaymentNotVerified,
	}
}

// PaymentGateway creates a 500 error for an upstream payment gateway failure,
// preserving the raw upstream response body for diagnostics.
func PaymentGateway(err error, raw []byte) *AppError {
	return &AppError{
		Code:    "PAYMENT_GATEWAY",
		Message: "failed to create payment session",
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrPaymentGateway, err),
		Raw:     raw,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrPaymentNotVerified):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
