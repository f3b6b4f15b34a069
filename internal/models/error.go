package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Store errors. Timeouts and unavailability are transient: read-only
	// operations may be retried, mutations must not be retried blindly
	// without an idempotency key.
	ErrStoreTimeout     = errors.New("store operation timed out")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// FilterConflictError reports two filter predicates that cannot be combined
// in a single compiled query because the store accepts at most one
// range-comparison filter per query.
type FilterConflictError struct {
	First  string
	Second string
}

func (e *FilterConflictError) Error() string {
	return fmt.Sprintf("filter conflict: %s cannot be combined with %s (only one range filter per query)", e.First, e.Second)
}

// InvalidSortFieldError reports a sort field outside the allow-list.
type InvalidSortFieldError struct {
	Field string
}

func (e *InvalidSortFieldError) Error() string {
	return fmt.Sprintf("invalid sort field %q", e.Field)
}

// InvalidFilterError reports a filter specification that failed validation
// before it ever reached the query compiler.
type InvalidFilterError struct {
	Field  string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter: %s: %s", e.Field, e.Reason)
}

// IsClientError reports whether err was caused by the caller's input rather
// than a backend failure.
func IsClientError(err error) bool {
	var fc *FilterConflictError
	var sf *InvalidSortFieldError
	var vf *InvalidFilterError
	return errors.As(err, &fc) || errors.As(err, &sf) || errors.As(err, &vf) || errors.Is(err, ErrBadRequest)
}
