// Package memstore is a deterministic in-memory implementation of the store
// contract, used by unit tests in place of a live MongoDB deployment. It
// honors the same semantics: total (sort key, id) ordering, start-after
// cursors, single-range-field queries and field projection.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/store"
)

// Store is an in-memory store.Store.
type Store struct {
	mu   sync.Mutex
	cols map[string]*Collection
}

// New creates an empty Store.
func New() *Store {
	return &Store{cols: make(map[string]*Collection)}
}

// Collection implements store.Store.
func (s *Store) Collection(name string) store.Collection {
	return s.Coll(name)
}

// Coll returns the typed collection for test helpers like FailWith and Put.
func (s *Store) Coll(name string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cols[name]
	if !ok {
		c = &Collection{name: name, docs: make(map[string]store.Document)}
		s.cols[name] = c
	}
	return c
}

// Collection is an in-memory store.Collection.
type Collection struct {
	name    string
	mu      sync.RWMutex
	docs    map[string]store.Document
	failErr error
}

// FailWith makes every subsequent operation return err. Pass nil to heal.
func (c *Collection) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failErr = err
}

// Put stores a document directly, bypassing Insert semantics. Test seeding helper.
func (c *Collection) Put(id string, doc store.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := cloneDoc(doc)
	d[store.IDField] = id
	c.docs[id] = d
}

// Len returns the number of stored documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

func (c *Collection) Find(_ context.Context, q store.Query) ([]store.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.failErr != nil {
		return nil, c.failErr
	}

	sortField := q.Sort.Field
	if sortField == "" {
		sortField = store.IDField
	}

	matched := make([]store.Document, 0)
	for _, d := range c.docs {
		if matchesAll(d, q.Predicates) {
			matched = append(matched, d)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return docLess(matched[i], matched[j], sortField, q.Sort.Desc)
	})

	if q.StartAfter != nil {
		idx := 0
		for idx < len(matched) && !afterCursor(matched[idx], sortField, q.Sort.Desc, q.StartAfter) {
			idx++
		}
		matched = matched[idx:]
	}

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]store.Document, 0, len(matched))
	for _, d := range matched {
		out = append(out, project(d, q.Projection))
	}
	return out, nil
}

func (c *Collection) Count(_ context.Context, preds []store.Predicate) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.failErr != nil {
		return 0, c.failErr
	}
	var n int64
	for _, d := range c.docs {
		if matchesAll(d, preds) {
			n++
		}
	}
	return n, nil
}

func (c *Collection) Get(_ context.Context, id string) (store.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.failErr != nil {
		return nil, c.failErr
	}
	d, ok := c.docs[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", c.name, models.ErrNotFound)
	}
	return cloneDoc(d), nil
}

func (c *Collection) Insert(_ context.Context, id string, doc store.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return c.failErr
	}
	if _, ok := c.docs[id]; ok {
		return fmt.Errorf("insert %s: %w", c.name, models.ErrConflict)
	}
	d := cloneDoc(doc)
	d[store.IDField] = id
	c.docs[id] = d
	return nil
}

func (c *Collection) Merge(_ context.Context, id string, fields store.Document, upsert bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return c.failErr
	}
	d, ok := c.docs[id]
	if !ok {
		if !upsert {
			return fmt.Errorf("merge %s: %w", c.name, models.ErrNotFound)
		}
		d = store.Document{store.IDField: id}
		c.docs[id] = d
	}
	for k, v := range fields {
		if k != store.IDField {
			d[k] = v
		}
	}
	return nil
}

func (c *Collection) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return c.failErr
	}
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("delete %s: %w", c.name, models.ErrNotFound)
	}
	delete(c.docs, id)
	return nil
}

func matchesAll(d store.Document, preds []store.Predicate) bool {
	for _, p := range preds {
		k := compare(d[p.Field], p.Value)
		var ok bool
		switch p.Op {
		case store.OpEq:
			ok = k == 0
		case store.OpGt:
			ok = k > 0
		case store.OpGte:
			ok = k >= 0
		case store.OpLt:
			ok = k < 0
		case store.OpLte:
			ok = k <= 0
		}
		if !ok {
			return false
		}
	}
	return true
}

func docLess(a, b store.Document, field string, desc bool) bool {
	k := compare(a[field], b[field])
	if k == 0 {
		k = compare(a.ID(), b.ID())
	}
	if desc {
		return k > 0
	}
	return k < 0
}

// afterCursor reports whether d sorts strictly after the cursor position.
func afterCursor(d store.Document, field string, desc bool, cur *store.Cursor) bool {
	k := compare(d[field], cur.Key)
	if k == 0 {
		k = compare(d.ID(), cur.ID)
	}
	if desc {
		return k < 0
	}
	return k > 0
}

// compare orders the Document scalar set. Absent values (nil) sort first.
func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv, _ := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case int64:
		return compareFloat(float64(av), b)
	case float64:
		return compareFloat(av, b)
	case time.Time:
		bv, _ := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	}
	return 0
}

func compareFloat(av float64, b any) int {
	var bv float64
	switch t := b.(type) {
	case int64:
		bv = float64(t)
	case float64:
		bv = t
	case int:
		bv = float64(t)
	}
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	}
	return 0
}

func project(d store.Document, fields []string) store.Document {
	if len(fields) == 0 {
		return cloneDoc(d)
	}
	out := store.Document{store.IDField: d[store.IDField]}
	for _, f := range fields {
		if v, ok := d[f]; ok {
			out[f] = v
		}
	}
	return out
}

func cloneDoc(d store.Document) store.Document {
	out := make(store.Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
