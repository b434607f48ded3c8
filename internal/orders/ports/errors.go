package ports

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrForbidden is returned when the caller does not own the order.
	ErrForbidden = errors.New("order belongs to a different user")

	// ErrInvalidState is returned when an operation is illegal in the
	// order's current lifecycle state.
	ErrInvalidState = errors.New("invalid order state")

	// ErrInvalidSignature is returned when a client confirmation or a
	// webhook payload fails HMAC verification.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrAlreadyPaid is returned by the conditional payment update when
	// another writer recorded a payment first.
	ErrAlreadyPaid = errors.New("order is already paid")

	// ErrIntentExists is returned when a second remote payment intent is
	// requested for an order that already has one bound.
	ErrIntentExists = errors.New("payment intent already exists for order")

	// ErrPaymentRejected is returned when the gateway reports the payment
	// in any status other than captured.
	ErrPaymentRejected = errors.New("payment not captured by gateway")

	// ErrValidation is returned for malformed or missing request fields.
	ErrValidation = errors.New("validation failed")
)

// UpstreamError wraps a failed call to an external system (payment
// gateway, shipping provider) with the system's name.
type UpstreamError struct {
	System string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.System, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Upstream builds an UpstreamError for the named system.
func Upstream(system string, err error) error {
	return &UpstreamError{System: system, Err: err}
}

// IsUpstream reports whether err originates from an external system.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Invalid wraps a reason into ErrValidation.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
