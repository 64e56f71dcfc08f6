package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidArgument indicates a local precondition failure on a write call. Never retried.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrCapabilityMismatch is returned when a historical operation is attempted
// against a provider that cannot serve historical data.
var ErrCapabilityMismatch = errors.New("provider does not support historical rates")

// ErrProviderUnavailable marks a transient upstream failure (transport, status, payload).
var ErrProviderUnavailable = errors.New("exchange rate provider unavailable")

// ErrAllProvidersExhausted is matched by AllProvidersExhaustedError.
var ErrAllProvidersExhausted = errors.New("all exchange rate providers exhausted")

// AppError carries an HTTP status alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError builds an AppError with an explicit status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError wraps ErrNotFound with a message describing what was missing.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewValidationError wraps ErrValidation with a message describing the bad input.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// ProviderError describes a failed upstream call made by a single provider.
type ProviderError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Reason)
}

// Is lets errors.Is(err, ErrProviderUnavailable) match any ProviderError.
func (e *ProviderError) Is(target error) bool { return target == ErrProviderUnavailable }

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError builds a ProviderError.
func NewProviderError(provider, reason string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Reason: reason, Err: err}
}

// AllProvidersExhaustedError is returned by the fallback chain once every
// configured provider failed. Last is nil when every failure was an empty result.
type AllProvidersExhaustedError struct {
	Operation string
	Last      error
}

func (e *AllProvidersExhaustedError) Error() string {
	reason := "Unknown error"
	if e.Last != nil {
		reason = e.Last.Error()
	}
	return fmt.Sprintf("all exchange rate providers exhausted for %s: %s", e.Operation, reason)
}

func (e *AllProvidersExhaustedError) Is(target error) bool { return target == ErrAllProvidersExhausted }

func (e *AllProvidersExhaustedError) Unwrap() error { return e.Last }
