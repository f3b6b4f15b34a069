package repositories

import (
	"context"
	"fmt"

	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/store"
)

// AuditLogRepository handles the append-only audit collection.
type AuditLogRepository struct {
	col store.Collection
}

// NewAuditLogRepository creates a new AuditLogRepository.
func NewAuditLogRepository(st store.Store) *AuditLogRepository {
	return &AuditLogRepository{col: st.Collection(CollectionAuditLogs)}
}

func auditEntryFromDoc(d store.Document) *models.AuditEntry {
	e := &models.AuditEntry{
		ID:         d.ID(),
		AdminID:    d.String("adminId"),
		Action:     d.String("action"),
		TargetType: d.String("targetType"),
		CreatedAt:  d.Time("createdAt"),
	}
	if s := d.String("targetId"); s != "" {
		e.TargetID = &s
	}
	if m, ok := d["details"].(map[string]any); ok {
		e.Details = m
	}
	return e
}

// Append stores one immutable entry. Entries are never updated afterwards.
func (r *AuditLogRepository) Append(ctx context.Context, e *models.AuditEntry) error {
	doc := store.Document{
		"adminId":    e.AdminID,
		"action":     e.Action,
		"targetType": e.TargetType,
		"createdAt":  e.CreatedAt.UTC(),
	}
	if e.TargetID != nil {
		doc["targetId"] = *e.TargetID
	}
	if len(e.Details) > 0 {
		doc["details"] = map[string]any(e.Details)
	}
	if err := r.col.Insert(ctx, e.ID, doc); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// ListRecent returns entries newest-first, optionally filtered to one
// administrator. Ids are ULIDs, so descending id order is reverse
// chronological without a separate timestamp index.
func (r *AuditLogRepository) ListRecent(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error) {
	q := store.Query{
		Sort:  store.Sort{Field: store.IDField, Desc: true},
		Limit: limit,
	}
	if adminID != nil {
		q.Predicates = append(q.Predicates, store.Eq("adminId", *adminID))
	}

	docs, err := r.col.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	entries := make([]*models.AuditEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, auditEntryFromDoc(d))
	}
	return entries, nil
}
