// Package idx generates lexicographically sortable ULID identifiers.
// Audit entries and backup records use them so that id order is creation
// order, which makes newest-first listing a descending id sort.
package idx

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// New returns a new ULID string for the current UTC time. Safe for
// concurrent use; ids generated within the same millisecond stay ordered
// through the monotonic entropy source.
func New() string {
	return NewAt(time.Now().UTC())
}

// NewAt returns a ULID string for the given time. Useful in tests that need
// ids with known relative order.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Valid reports whether s parses as a canonical ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
