package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/flowregistry/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

type violation int

const (
	noViolation violation = iota
	uniqueViolation
	foreignKeyViolation
	checkViolation
	notNullViolation
)

func (v violation) String() string {
	switch v {
	case uniqueViolation:
		return "unique violation"
	case foreignKeyViolation:
		return "foreign key violation"
	case checkViolation:
		return "check constraint violation"
	case notNullViolation:
		return "not null violation"
	default:
		return "no violation"
	}
}

// classify inspects pgx and sqlite errors. detail is the constraint or column
// name when the driver reports one.
func classify(err error) (v violation, detail string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return uniqueViolation, pgErr.ConstraintName
		case foreignKeyViolationCode:
			return foreignKeyViolation, pgErr.ConstraintName
		case checkViolationCode:
			return checkViolation, pgErr.ConstraintName
		case notNullViolationCode:
			return notNullViolation, pgErr.ColumnName
		}
		return noViolation, ""
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return uniqueViolation, ""
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return foreignKeyViolation, ""
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return checkViolation, ""
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return notNullViolation, ""
		}
	}
	return noViolation, ""
}

// MapError maps a database error to an appropriate store error, wrapping the
// original to keep the driver detail. Errors without a mapping are returned as is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	v, detail := classify(err)
	switch v {
	case uniqueViolation:
		return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
	case foreignKeyViolation, checkViolation, notNullViolation:
		if detail != "" {
			return fmt.Errorf("%w: %s (%s): %w", store.ErrInvalidEntity, v, detail, err)
		}
		return fmt.Errorf("%w: %s: %w", store.ErrInvalidEntity, v, err)
	}
	return err
}

// IsUniqueViolation reports whether err is a unique or primary key violation.
func IsUniqueViolation(err error) bool {
	v, _ := classify(err)
	return v == uniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	v, _ := classify(err)
	return v == foreignKeyViolation
}

// IsCheckConstraintViolation reports whether err is a check constraint violation.
func IsCheckConstraintViolation(err error) bool {
	v, _ := classify(err)
	return v == checkViolation
}

// IsNotNullViolation reports whether err is a not null violation.
func IsNotNullViolation(err error) bool {
	v, _ := classify(err)
	return v == notNullViolation
}

// MapUniqueViolation replaces a unique violation with specificErr, or with a
// store.ErrDuplicate naming entityName when specificErr is nil. Other errors are
// returned unchanged.
func MapUniqueViolation(err error, entityName string, specificErr error) error {
	if !IsUniqueViolation(err) {
		return err
	}
	if specificErr != nil {
		return fmt.Errorf("%w: %w", specificErr, err)
	}
	if entityName == "" {
		return fmt.Errorf("%w: duplicate entry: %w", store.ErrDuplicate, err)
	}
	return fmt.Errorf("%w: %s already exists: %w", store.ErrDuplicate, entityName, err)
}
