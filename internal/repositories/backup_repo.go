package repositories

import (
	"context"
	"fmt"

	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/store"
)

// BackupRepository tracks backup bookkeeping records.
type BackupRepository struct {
	col store.Collection
}

// NewBackupRepository creates a new BackupRepository.
func NewBackupRepository(st store.Store) *BackupRepository {
	return &BackupRepository{col: st.Collection(CollectionBackups)}
}

func backupFromDoc(d store.Document) *models.Backup {
	return &models.Backup{
		ID:        d.ID(),
		Name:      d.String("name"),
		Location:  d.String("location"),
		SizeBytes: d.Int64("sizeBytes"),
		CreatedBy: d.String("createdBy"),
		CreatedAt: d.Time("createdAt"),
	}
}

// Insert stores a new backup record.
func (r *BackupRepository) Insert(ctx context.Context, b *models.Backup) error {
	doc := store.Document{
		"name":      b.Name,
		"location":  b.Location,
		"sizeBytes": b.SizeBytes,
		"createdBy": b.CreatedBy,
		"createdAt": b.CreatedAt.UTC(),
	}
	if err := r.col.Insert(ctx, b.ID, doc); err != nil {
		return fmt.Errorf("insert backup record: %w", err)
	}
	return nil
}

// ListRecent returns backup records newest-first (descending ULID order).
func (r *BackupRepository) ListRecent(ctx context.Context, limit int) ([]*models.Backup, error) {
	docs, err := r.col.Find(ctx, store.Query{
		Sort:  store.Sort{Field: store.IDField, Desc: true},
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	backups := make([]*models.Backup, 0, len(docs))
	for _, d := range docs {
		backups = append(backups, backupFromDoc(d))
	}
	return backups, nil
}

// GetByID fetches one backup record.
func (r *BackupRepository) GetByID(ctx context.Context, id string) (*models.Backup, error) {
	d, err := r.col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return backupFromDoc(d), nil
}
