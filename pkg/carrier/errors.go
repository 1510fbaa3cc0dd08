package carrier

import (
	"errors"
	"fmt"
)

// CarrierError represents an error from a shipping carrier.
type CarrierError struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *CarrierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CarrierError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for CarrierError.
func (e *CarrierError) Is(target error) bool {
	t, ok := target.(*CarrierError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewCarrierError creates a new CarrierError.
func NewCarrierError(carrier, code, message string) *CarrierError {
	return &CarrierError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *CarrierError) WithCause(err error) *CarrierError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *CarrierError) WithStatusCode(code int) *CarrierError {
	e.StatusCode = code
	return e
}

// Sentinel errors for common carrier scenarios.
var (
	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")

	// ErrCarrierDisabled indicates the carrier is disabled in configuration.
	ErrCarrierDisabled = errors.New("carrier disabled")

	// ErrMissingCredentials indicates required carrier credentials are absent.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrAuthorizationFailed indicates carrier authorization failed and could
	// not be recovered by a token refresh.
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrBookingRejected indicates the carrier rejected the booking request.
	ErrBookingRejected = errors.New("booking rejected")

	// ErrLabelNotAvailable indicates the label is not retrievable for this shipment.
	ErrLabelNotAvailable = errors.New("label not available")

	// ErrTrackingNotFound indicates no tracking data exists for the shipment.
	ErrTrackingNotFound = errors.New("tracking not found")

	// ErrRatesUnsupported indicates the carrier exposes no rate operation.
	ErrRatesUnsupported = errors.New("rates unsupported")
)
