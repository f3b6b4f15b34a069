package directory

import (
	"time"

	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/store"
)

// User document fields referenced by compiled queries.
const (
	FieldEmail       = "email"
	FieldRole        = "role"
	FieldPlan        = "plan"
	FieldDeleted     = "deleted"
	FieldLockedUntil = "lockedUntil"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldName        = "name"
	FieldLastLogin   = "lastLoginAt"
)

// maxCodepoint is the store's maximal-codepoint sentinel: appending it to a
// prefix makes an exclusive upper bound for the prefix range.
const maxCodepoint = "￿"

// sortFields maps the external allow-list onto document fields.
var sortFields = map[string]string{
	"createdAt":    FieldCreatedAt,
	"updatedAt":    FieldUpdatedAt,
	"name":         FieldName,
	"lastActivity": FieldLastLogin,
}

// Human-readable names for the predicates that can claim the single range
// slot, used in FilterConflict errors.
const (
	rangeEmailPrefix  = "email prefix search"
	rangeCreatedRange = "creation-date range"
	rangeBannedStatus = "banned status"
)

// Compile translates a validated ListFilter into one executable store query:
// an ordered predicate list plus a single sort instruction. It fails with
// FilterConflict when the filter needs more than the one range-comparison
// field the store supports, and with InvalidSortField for sort fields
// outside the allow-list. Output is deterministic for identical input.
func Compile(f ListFilter, now time.Time) (store.Query, error) {
	var q store.Query

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	field, ok := sortFields[sortBy]
	if !ok {
		return q, &models.InvalidSortFieldError{Field: f.SortBy}
	}
	q.Sort = store.Sort{Field: field, Desc: f.SortOrder != SortAsc}

	// At most one of these may claim the range slot. Rejecting the
	// combination outright (rather than silently dropping one constraint) is
	// the documented behavior.
	var ranges []string
	if f.Search != "" {
		ranges = append(ranges, rangeEmailPrefix)
	}
	if f.CreatedFrom != nil || f.CreatedTo != nil {
		ranges = append(ranges, rangeCreatedRange)
	}
	if f.Status == models.StatusBanned {
		ranges = append(ranges, rangeBannedStatus)
	}
	if len(ranges) > 1 {
		return q, &models.FilterConflictError{First: ranges[0], Second: ranges[1]}
	}

	// Equality predicates compose freely and come first, in fixed order.
	if f.Role != "" {
		q.Predicates = append(q.Predicates, store.Eq(FieldRole, f.Role))
	}
	if f.Plan != "" {
		q.Predicates = append(q.Predicates, store.Eq(FieldPlan, f.Plan))
	}
	switch f.Status {
	case models.StatusActive:
		q.Predicates = append(q.Predicates, store.Eq(FieldDeleted, false))
	case models.StatusDeleted:
		q.Predicates = append(q.Predicates, store.Eq(FieldDeleted, true))
	case models.StatusBanned:
		// Banned is derived, not stored: not deleted, and the lock reaches
		// into the future. The comparison is this query's one range filter.
		q.Predicates = append(q.Predicates,
			store.Eq(FieldDeleted, false),
			store.Gt(FieldLockedUntil, now.UTC()))
	}

	if f.Search != "" {
		q.Predicates = append(q.Predicates,
			store.Gte(FieldEmail, f.Search),
			store.Lt(FieldEmail, f.Search+maxCodepoint))
	}
	if f.CreatedFrom != nil {
		q.Predicates = append(q.Predicates, store.Gte(FieldCreatedAt, f.CreatedFrom.UTC()))
	}
	if f.CreatedTo != nil {
		q.Predicates = append(q.Predicates, store.Lte(FieldCreatedAt, f.CreatedTo.UTC()))
	}

	return q, nil
}
