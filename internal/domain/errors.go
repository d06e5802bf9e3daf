package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Specific validation errors below wrap it.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyName is returned when a required name is empty.
	ErrEmptyName = fmtValidation("name cannot be empty")

	// ErrEmptyBucketID is returned when an item is not associated with a bucket.
	ErrEmptyBucketID = fmtValidation("bucket ID cannot be empty")

	// ErrEmptyFlowID is returned when a snapshot is not associated with a flow.
	ErrEmptyFlowID = fmtValidation("flow ID cannot be empty")

	// ErrInvalidItemType is returned when a bucket item type is not known.
	ErrInvalidItemType = fmtValidation("invalid bucket item type")

	// ErrInvalidBundleType is returned when an extension bundle type is not known.
	ErrInvalidBundleType = fmtValidation("invalid bundle type")

	// ErrInvalidVersion is returned when a snapshot version is not positive.
	ErrInvalidVersion = fmtValidation("version must be positive")

	// ErrEmptyCoordinate is returned when a group, artifact or version is empty.
	ErrEmptyCoordinate = fmtValidation("bundle coordinate cannot be empty")

	// ErrEmptyType is returned when an extension type is empty.
	ErrEmptyType = fmtValidation("extension type cannot be empty")
)

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

func fmtValidation(msg string) error { return &validationError{msg: msg} }
