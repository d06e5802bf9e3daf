package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrConfiguration is returned when schema declarations or registrations are invalid,
	// for example a table without a name or an entity type registered twice.
	// These are programmer errors and surface at startup.
	ErrConfiguration = errors.New("invalid persistence configuration")

	// ErrIllegalState is returned when a lookup depends on configuration that was
	// never performed, such as asking the schema registry for an unregistered entity type.
	ErrIllegalState = errors.New("illegal state")

	// ErrQueryBuild is returned when a statement cannot be assembled: nothing selected,
	// no source table, or a mismatch between placeholders and bound arguments.
	// It is always detected before a statement reaches the database.
	ErrQueryBuild = errors.New("query build failed")

	// ErrMapping is returned when a mapper is handed a column it does not know about
	// or a result row lacks a column the mapper expects.
	ErrMapping = errors.New("mapping failed")

	// ErrUnsupportedOperation is returned when an operation is not supported for an
	// entity type, such as updating a table with no updatable columns.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a bucket with the same name).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConflict is returned when a version-checked update finds that the row
	// was modified since it was read.
	ErrConflict = errors.New("entity was modified concurrently")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrBucketNotFound indicates that the requested bucket does not exist in the store.
	ErrBucketNotFound = fmt.Errorf("%w: bucket", ErrNotFound)

	// ErrFlowNotFound indicates that the requested flow does not exist in the store.
	ErrFlowNotFound = fmt.Errorf("%w: flow", ErrNotFound)

	// ErrSnapshotNotFound indicates that the requested flow snapshot does not exist in the store.
	ErrSnapshotNotFound = fmt.Errorf("%w: flow snapshot", ErrNotFound)

	// ErrBundleNotFound indicates that the requested extension bundle does not exist in the store.
	ErrBundleNotFound = fmt.Errorf("%w: extension bundle", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrBucketNameExists indicates that a bucket with the given name already exists.
	ErrBucketNameExists = fmt.Errorf("%w: bucket name", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// Entity-specific not found errors wrap ErrNotFound, so a single check covers them.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "bucket", "flow_snapshot")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
