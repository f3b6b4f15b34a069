// Package directory implements the administrative directory query engine:
// filter validation, compilation of filters into store-native predicate
// queries, and offset-style pagination emulated over start-after cursors.
package directory

import (
	"strings"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/models"
)

// Page bounds
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Sort directions
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListFilter is the declarative description of a directory listing request.
// It is validated before compilation; validation and compilation fail with
// distinct error kinds.
type ListFilter struct {
	Search      string // email prefix, matched case-insensitively
	Role        string
	Plan        string
	Status      string // "active", "deleted" or "banned"; empty means all
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      string // allow-listed sort field; empty means createdAt
	SortOrder   string // "asc" or "desc"; empty means desc
	Page        int    // 1-based
	Limit       int
}

// Validate normalizes the filter and checks every field that can be judged
// without compiling: enums, bounds and range sanity. It returns the
// normalized filter, leaving the receiver untouched.
func (f ListFilter) Validate() (ListFilter, error) {
	out := f

	out.Search = strings.ToLower(strings.TrimSpace(f.Search))

	switch f.Status {
	case "", models.StatusActive, models.StatusDeleted, models.StatusBanned:
	default:
		return out, &models.InvalidFilterError{Field: "status", Reason: "must be active, deleted or banned"}
	}

	switch f.SortOrder {
	case "":
		out.SortOrder = SortDesc
	case SortAsc, SortDesc:
	default:
		return out, &models.InvalidFilterError{Field: "sortOrder", Reason: "must be asc or desc"}
	}

	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedTo.Before(*f.CreatedFrom) {
		return out, &models.InvalidFilterError{Field: "createdTo", Reason: "must not precede createdFrom"}
	}

	if f.Page <= 0 {
		out.Page = 1
	}
	switch {
	case f.Limit <= 0:
		out.Limit = DefaultPageSize
	case f.Limit > MaxPageSize:
		return out, &models.InvalidFilterError{Field: "limit", Reason: "must be at most 100"}
	}

	return out, nil
}
