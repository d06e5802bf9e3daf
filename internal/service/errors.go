package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/store"
)

// ErrBundleVersionNotFound indicates that the requested bundle version does not exist.
var ErrBundleVersionNotFound = fmt.Errorf("%w: extension bundle version", store.ErrNotFound)

// ErrExtensionNotFound indicates that the requested extension does not exist.
var ErrExtensionNotFound = fmt.Errorf("%w: extension", store.ErrNotFound)

// MetadataServiceError wraps errors from the metadata service with context.
type MetadataServiceError struct {
	// Operation is the operation that failed (e.g., "create_bucket", "delete_flow")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for MetadataServiceError.
func (e *MetadataServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("metadata service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("metadata service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *MetadataServiceError) Unwrap() error {
	return e.Err
}

// NewMetadataServiceError creates a new MetadataServiceError.
// Expected conditions (missing entities, duplicates, conflicts, invalid input)
// are returned unchanged so callers can match them directly.
func NewMetadataServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrDuplicate) ||
		errors.Is(err, store.ErrConflict) ||
		errors.Is(err, store.ErrUnsupportedOperation) ||
		errors.Is(err, domain.ErrValidation) {
		return err
	}
	return &MetadataServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
