package dbx

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE values we care about. Class 23 is "integrity constraint violation",
// class 22 is "data exception".
const (
	codeUniqueViolation    = "23505"
	classIntegrityViolated = "23"
	classDataException     = "22"
)

// IsUniqueViolation reports whether err carries a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return false
}

// IsIntegrityViolation reports whether err belongs to SQLSTATE class 23
// (not-null, foreign key, unique, check and exclusion violations).
func IsIntegrityViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, classIntegrityViolated)
	}
	return false
}

// IsDataException reports whether err belongs to SQLSTATE class 22, e.g. a
// string longer than its column (22001) or a number out of range (22003).
func IsDataException(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, classDataException)
	}
	return false
}

// ErrorMessage returns the primary message of a PostgreSQL error, or "".
func ErrorMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	return ""
}

// ConstraintName returns the violated constraint, if the driver reported one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
