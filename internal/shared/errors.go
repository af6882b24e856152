package shared

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoResults indicates the provider answered successfully but had no data.
	ErrNoResults = errors.New("no results")
)

// ValidationError reports caller-supplied parameters failing a precondition.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthError indicates the provider token exchange failed.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "provider authentication failed"
	}
	return "provider authentication failed: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// ProviderError carries a non-success answer from the upstream provider.
type ProviderError struct {
	StatusCode int
	Detail     string
}

func (e *ProviderError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Detail)
}

// HTTPStatus maps an error from the core services onto a transport status code.
// Upstream 400s pass through as client faults, upstream 404s as not found,
// everything else from the provider surfaces as a bad gateway.
func HTTPStatus(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return http.StatusBadGateway
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		switch pe.StatusCode {
		case http.StatusBadRequest:
			return http.StatusBadRequest
		case http.StatusNotFound:
			return http.StatusNotFound
		default:
			return http.StatusBadGateway
		}
	}
	if errors.Is(err, ErrNoResults) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
