package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no request exists for an ID
	ErrNotFound = errors.New("purchase request not found")

	// ErrAlreadyResolved is returned when a request has already left the new bucket
	ErrAlreadyResolved = errors.New("purchase request already resolved")

	// ErrStoreUnavailable wraps every failure of the backing key-value store
	ErrStoreUnavailable = errors.New("request store unavailable")

	// ErrGatewayUnavailable wraps transport failures of the chat gateway
	ErrGatewayUnavailable = errors.New("chat gateway unavailable")
)

// ValidationError reports malformed command input back to the issuing user
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsFatal reports whether err must stop the event loop
func IsFatal(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrGatewayUnavailable)
}
