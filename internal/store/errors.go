package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned by Get when the key was never set or has been cleared.
	ErrNotFound = errors.New("key not found")

	// ErrInvalidValue is returned when a value cannot be encoded for storage
	// or a stored value cannot be decoded into the requested type.
	ErrInvalidValue = errors.New("invalid stored value")

	// ErrUnknownKey is returned when a key outside the known set is used.
	ErrUnknownKey = errors.New("unknown key")
)

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Key       Key    // The logical key involved
	Operation string // The operation that failed (e.g., "set", "get")
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %q failed: %v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError for the given key and operation.
func NewStoreError(key Key, operation string, err error) *StoreError {
	return &StoreError{
		Key:       key,
		Operation: operation,
		Err:       err,
	}
}
