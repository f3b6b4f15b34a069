// Package store defines the narrow document-store contract the directory
// engine is built against: equality filters plus at most one range field per
// query, a single sort field (with the document id as tie-break), start-after
// cursor traversal, field projection, and a fast approximate count. Offset
// jumps, joins and multi-document transactions are deliberately absent; the
// backend does not offer them at the scale this subsystem targets.
package store

import (
	"context"
	"time"
)

// Op is a predicate comparison operator.
type Op string

const (
	OpEq  Op = "=="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

// IsRange reports whether the operator is a range comparison. The store
// accepts range predicates on at most one field per query.
func (o Op) IsRange() bool { return o != OpEq }

// Predicate is one field comparison.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

func Eq(field string, v any) Predicate  { return Predicate{Field: field, Op: OpEq, Value: v} }
func Gt(field string, v any) Predicate  { return Predicate{Field: field, Op: OpGt, Value: v} }
func Gte(field string, v any) Predicate { return Predicate{Field: field, Op: OpGte, Value: v} }
func Lt(field string, v any) Predicate  { return Predicate{Field: field, Op: OpLt, Value: v} }
func Lte(field string, v any) Predicate { return Predicate{Field: field, Op: OpLte, Value: v} }

// Sort orders results by a single field; ties break on document id so the
// order is total and cursors are unambiguous.
type Sort struct {
	Field string
	Desc  bool
}

// Cursor identifies the position to continue after: the sort-key value and
// the id of the last document already seen.
type Cursor struct {
	Key any
	ID  string
}

// Query is one executable store read.
type Query struct {
	Predicates []Predicate
	Sort       Sort
	StartAfter *Cursor
	Limit      int      // 0 means no limit
	Projection []string // field names to return; empty means whole document; id is always present
}

// Document is a schemaless record. Values are normalized to string, bool,
// int64, float64, time.Time, []any, map[string]any or nil.
type Document map[string]any

// IDField is the document id key.
const IDField = "_id"

// ID returns the document id, or "" when absent.
func (d Document) ID() string {
	s, _ := d[IDField].(string)
	return s
}

// String returns the named field as a string, or "" when absent or not a string.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// Bool returns the named field as a bool, defaulting to false.
func (d Document) Bool(field string) bool {
	b, _ := d[field].(bool)
	return b
}

// Int64 returns the named field as an int64, accepting stored float64 values.
func (d Document) Int64(field string) int64 {
	switch v := d[field].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

// Time returns the named field as a time.Time, or the zero time.
func (d Document) Time(field string) time.Time {
	t, _ := d[field].(time.Time)
	return t
}

// TimePtr returns the named field as a *time.Time, or nil when absent.
func (d Document) TimePtr(field string) *time.Time {
	if t, ok := d[field].(time.Time); ok {
		return &t
	}
	return nil
}

// Strings returns the named field as a []string, or nil.
func (d Document) Strings(field string) []string {
	vs, ok := d[field].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Collection exposes the store primitives for one named collection.
type Collection interface {
	// Find executes q and returns matching documents in sort order.
	Find(ctx context.Context, q Query) ([]Document, error)

	// Count returns the backend's fast aggregate count of documents matching
	// the predicates. The result is approximate: it may not reflect the very
	// latest writes.
	Count(ctx context.Context, preds []Predicate) (int64, error)

	// Get fetches one document by id. Returns models.ErrNotFound when absent.
	Get(ctx context.Context, id string) (Document, error)

	// Insert stores a new document under id.
	Insert(ctx context.Context, id string, doc Document) error

	// Merge sets only the given fields on the identified document, preserving
	// the rest. With upsert false it returns models.ErrNotFound when the
	// document is absent; with upsert true it creates it from the fields.
	Merge(ctx context.Context, id string, fields Document, upsert bool) error

	// Delete removes the document permanently. Returns models.ErrNotFound
	// when absent.
	Delete(ctx context.Context, id string) error
}

// Store provides named collections over a shared backend client.
type Store interface {
	Collection(name string) Collection
}
