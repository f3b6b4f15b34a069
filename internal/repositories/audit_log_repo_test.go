package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/store/memstore"
	"github.com/inkwell-app/inkwell-api/pkg/idx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendEntry(t *testing.T, repo *AuditLogRepository, at time.Time, adminID, action string) string {
	t.Helper()
	id := idx.NewAt(at)
	targetID := "user-1"
	err := repo.Append(context.Background(), &models.AuditEntry{
		ID:         id,
		AdminID:    adminID,
		Action:     action,
		TargetType: models.AuditTargetUser,
		TargetID:   &targetID,
		Details:    map[string]any{"k": "v"},
		CreatedAt:  at,
	})
	require.NoError(t, err)
	return id
}

func TestAuditLogRepository_AppendAndListNewestFirst(t *testing.T) {
	repo := NewAuditLogRepository(memstore.New())
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	appendEntry(t, repo, base, "admin-1", models.AuditActionUserUpdate)
	appendEntry(t, repo, base.Add(time.Minute), "admin-2", models.AuditActionUserDelete)
	newest := appendEntry(t, repo, base.Add(2*time.Minute), "admin-1", models.AuditActionConfigUpdate)

	entries, err := repo.ListRecent(context.Background(), nil, 10)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, newest, entries[0].ID)
	assert.Equal(t, models.AuditActionConfigUpdate, entries[0].Action)
	assert.Equal(t, models.AuditActionUserUpdate, entries[2].Action)
	require.NotNil(t, entries[0].TargetID)
	assert.Equal(t, "user-1", *entries[0].TargetID)
	assert.Equal(t, map[string]any{"k": "v"}, entries[0].Details)
}

func TestAuditLogRepository_ListFiltersByAdmin(t *testing.T) {
	repo := NewAuditLogRepository(memstore.New())
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	appendEntry(t, repo, base, "admin-1", models.AuditActionUserUpdate)
	appendEntry(t, repo, base.Add(time.Minute), "admin-2", models.AuditActionUserDelete)
	appendEntry(t, repo, base.Add(2*time.Minute), "admin-1", models.AuditActionConfigUpdate)

	adminID := "admin-1"
	entries, err := repo.ListRecent(context.Background(), &adminID, 10)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "admin-1", e.AdminID)
	}
}

func TestAuditLogRepository_ListHonorsLimit(t *testing.T) {
	repo := NewAuditLogRepository(memstore.New())
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		appendEntry(t, repo, base.Add(time.Duration(i)*time.Minute), "admin-1", models.AuditActionUserUpdate)
	}

	entries, err := repo.ListRecent(context.Background(), nil, 2)

	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
