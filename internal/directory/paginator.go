package directory

import (
	"context"
	"fmt"

	"github.com/inkwell-app/inkwell-api/internal/store"
)

// skipBatchSize bounds how many key-only documents one advance-phase read
// fetches while walking toward the requested page.
const skipBatchSize = 250

// Paginate emulates numeric-offset pagination on a store that only supports
// "fetch N starting after a document". To reach page p with size limit it
// advances through (p-1)*limit records with key-only cursor reads, then
// fetches limit+1 records; a surplus record means hasMore.
//
// This costs O(offset + limit) store reads, so deep pages are expensive by
// design; callers that need deep traversal should persist the last cursor
// and continue from it instead of asking for large page numbers.
//
// Page contents are only consistent with the collection state at the moment
// each constituent read executes: writes landing between the skip phase and
// the fetch phase can make an item show up twice or not at all across
// adjacent pages. That is the documented best-effort semantics of offset
// emulation over cursors, not a defect this engine can remove.
func Paginate(ctx context.Context, col store.Collection, q store.Query, page, limit int) ([]store.Document, bool, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	sortField := q.Sort.Field
	if sortField == "" {
		sortField = store.IDField
	}

	// Advance phase: walk the cursor forward offset records, keeping only the
	// last-seen sort key. Page 1 skips this entirely.
	var cursor *store.Cursor
	for remaining := offset; remaining > 0; {
		batch := remaining
		if batch > skipBatchSize {
			batch = skipBatchSize
		}

		kq := q
		kq.StartAfter = cursor
		kq.Limit = batch
		kq.Projection = []string{sortField}

		docs, err := col.Find(ctx, kq)
		if err != nil {
			return nil, false, fmt.Errorf("pagination advance: %w", err)
		}
		if len(docs) == 0 {
			// Page beyond the end of the collection.
			return []store.Document{}, false, nil
		}

		last := docs[len(docs)-1]
		cursor = &store.Cursor{Key: last[sortField], ID: last.ID()}
		remaining -= len(docs)

		if len(docs) < batch && remaining > 0 {
			return []store.Document{}, false, nil
		}
	}

	// Fetch phase: one extra record decides hasMore.
	fq := q
	fq.StartAfter = cursor
	fq.Limit = limit + 1

	docs, err := col.Find(ctx, fq)
	if err != nil {
		return nil, false, fmt.Errorf("pagination fetch: %w", err)
	}

	hasMore := len(docs) > limit
	if hasMore {
		docs = docs[:limit]
	}
	return docs, hasMore, nil
}
