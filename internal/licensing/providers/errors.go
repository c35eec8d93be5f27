package providers

import (
	"errors"
	"fmt"
)

// ErrorCategory normalizes registry failures so the verifier can decide
// between a definitive rejection and "try again later".
type ErrorCategory string

const (
	ErrorNotFound       ErrorCategory = "not_found"       // no profile for the licence number
	ErrorProviderOutage ErrorCategory = "provider_outage" // transport failure or unexpected status
	ErrorTimeout        ErrorCategory = "timeout"
	ErrorBadData        ErrorCategory = "bad_data"     // profile could not be read or parsed
	ErrorCircuitOpen    ErrorCategory = "circuit_open" // lookup skipped by the breaker
	ErrorCanceled       ErrorCategory = "canceled" // caller gave up before the registry answered
	ErrorInternal       ErrorCategory = "internal"
)

// Retryable reports whether the same lookup may succeed later.
func (c ErrorCategory) Retryable() bool {
	switch c {
	case ErrorTimeout, ErrorProviderOutage, ErrorCircuitOpen:
		return true
	}
	return false
}

// TripsBreaker reports whether the failure says the registry is unhealthy.
// A missing record or an odd profile is still a healthy answer, and a
// cancelled call says nothing about the registry at all.
func (c ErrorCategory) TripsBreaker() bool {
	switch c {
	case ErrorTimeout, ErrorProviderOutage, ErrorInternal:
		return true
	}
	return false
}

// ProviderError is a categorized registry failure.
type ProviderError struct {
	Category   ErrorCategory
	ProviderID string
	Message    string
	Underlying error
	Retryable  bool
	// StatusCode is the registry's HTTP status for unexpected responses.
	StatusCode int
}

func NewProviderError(category ErrorCategory, providerID, message string, underlying error) *ProviderError {
	return &ProviderError{
		Category:   category,
		ProviderID: providerID,
		Message:    message,
		Underlying: underlying,
		Retryable:  category.Retryable(),
	}
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider %s [%s]: %s", e.ProviderID, e.Category, e.Message)
	if e.Underlying == nil {
		return msg
	}
	return msg + ": " + e.Underlying.Error()
}

func (e *ProviderError) Unwrap() error { return e.Underlying }

func asProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	ok := errors.As(err, &pe)
	return pe, ok
}

// IsRetryable is false for anything that is not a ProviderError.
func IsRetryable(err error) bool {
	pe, ok := asProviderError(err)
	return ok && pe.Retryable
}

// GetCategory treats uncategorized errors as internal.
func GetCategory(err error) ErrorCategory {
	if pe, ok := asProviderError(err); ok {
		return pe.Category
	}
	return ErrorInternal
}

// CountsAsFailure reports whether err should be recorded against the registry breaker.
func CountsAsFailure(err error) bool {
	return GetCategory(err).TripsBreaker()
}
