package source

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a provider failure. The collector's retry decision
// depends only on the kind, never on provider-specific detail.
type ErrorKind string

const (
	KindAuthFailed      ErrorKind = "auth_failed"
	KindQuotaExceeded   ErrorKind = "quota_exceeded"
	KindNotFound        ErrorKind = "not_found"
	KindTransient       ErrorKind = "transient"
	KindTimeout         ErrorKind = "timeout"
	KindInvalidResponse ErrorKind = "invalid_response"
)

// ProviderError wraps every error leaving an adapter. Provider-native
// failures are translated into one of the kinds above.
type ProviderError struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Provider, e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewError builds a ProviderError for the given adapter.
func NewError(kind ErrorKind, provider, message string, cause error) *ProviderError {
	return &ProviderError{Kind: kind, Provider: provider, Message: message, Cause: cause}
}

// IsRetryable reports whether the collector should retry after err.
// Only transient network failures and timeouts qualify.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind == KindTransient || pe.Kind == KindTimeout
	}
	return false
}

// KindOf extracts the error kind, or "" for non-provider errors.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
