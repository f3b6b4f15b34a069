package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/directory"
	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/repositories"
	"github.com/inkwell-app/inkwell-api/internal/store"
	"github.com/inkwell-app/inkwell-api/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockedService(users *MockDirectoryUserRepository, audit *RecordingAuditRecorder) *DirectoryService {
	if users == nil {
		users = &MockDirectoryUserRepository{}
	}
	if audit == nil {
		audit = &RecordingAuditRecorder{}
	}
	return NewDirectoryService(users, &MockSystemConfigRepository{}, &MockBackupRepository{}, &MockStatsProvider{}, audit, slog.Default())
}

func TestDirectoryService_ListUsers_InvalidFilterNeverHitsStore(t *testing.T) {
	called := false
	users := &MockDirectoryUserRepository{
		FindPageFunc: func(ctx context.Context, q store.Query, page, limit int) (*models.UserPage, error) {
			called = true
			return &models.UserPage{}, nil
		},
	}
	svc := newMockedService(users, nil)

	_, err := svc.ListUsers(context.Background(), directory.ListFilter{Status: "nope"})
	assert.True(t, models.IsClientError(err))

	from := time.Now()
	_, err = svc.ListUsers(context.Background(), directory.ListFilter{Search: "a", CreatedFrom: &from})
	var fc *models.FilterConflictError
	assert.True(t, errors.As(err, &fc))

	assert.False(t, called)
}

func TestDirectoryService_UpdateUser_EmptyPatch(t *testing.T) {
	audit := &RecordingAuditRecorder{}
	svc := newMockedService(nil, audit)

	err := svc.UpdateUser(context.Background(), "admin-1", "user-1", models.UserPatch{})

	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.Empty(t, audit.Records)
}

func TestDirectoryService_UpdateUser_AuditsBeforeAfter(t *testing.T) {
	user := NewTestUser("user-1", "u@example.com", "User")
	users := &MockDirectoryUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) { return user, nil },
	}
	audit := &RecordingAuditRecorder{}
	svc := newMockedService(users, audit)

	plan := models.PlanStudio
	err := svc.UpdateUser(context.Background(), "admin-1", "user-1", models.UserPatch{Plan: &plan})

	require.NoError(t, err)
	require.Len(t, audit.Records, 1)
	rec := audit.Records[0]
	assert.Equal(t, "admin-1", rec.AdminID)
	assert.Equal(t, models.AuditActionUserUpdate, rec.Action)
	assert.Equal(t, models.AuditTargetUser, rec.TargetType)
	require.NotNil(t, rec.TargetID)
	assert.Equal(t, "user-1", *rec.TargetID)
	assert.Equal(t, map[string]any{"from": models.PlanFree, "to": models.PlanStudio}, rec.Details["plan"])
}

func TestDirectoryService_UpdateUser_NotFoundNotAudited(t *testing.T) {
	audit := &RecordingAuditRecorder{}
	svc := newMockedService(&MockDirectoryUserRepository{}, audit)

	name := "New Name"
	err := svc.UpdateUser(context.Background(), "admin-1", "missing", models.UserPatch{Name: &name})

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, audit.Records)
}

func TestDirectoryService_DeleteUser_SoftVsHard(t *testing.T) {
	user := NewTestUser("user-1", "u@example.com", "User")
	var softCalled, hardCalled bool
	users := &MockDirectoryUserRepository{
		GetByIDFunc:    func(ctx context.Context, id string) (*models.User, error) { return user, nil },
		SoftDeleteFunc: func(ctx context.Context, id string, now time.Time) error { softCalled = true; return nil },
		HardDeleteFunc: func(ctx context.Context, id string) error { hardCalled = true; return nil },
	}
	audit := &RecordingAuditRecorder{}
	svc := newMockedService(users, audit)

	require.NoError(t, svc.DeleteUser(context.Background(), "admin-1", "user-1", true))
	assert.True(t, softCalled)
	assert.False(t, hardCalled)

	require.NoError(t, svc.DeleteUser(context.Background(), "admin-1", "user-1", false))
	assert.True(t, hardCalled)

	require.Len(t, audit.Records, 2)
	assert.Equal(t, map[string]any{"soft": true, "email": "u@example.com"}, audit.Records[0].Details)
	assert.Equal(t, map[string]any{"soft": false, "email": "u@example.com"}, audit.Records[1].Details)
}

func TestDirectoryService_UpdateSystemConfig_AuditsWrittenFields(t *testing.T) {
	audit := &RecordingAuditRecorder{}
	svc := newMockedService(nil, audit)

	err := svc.UpdateSystemConfig(context.Background(), "admin-1", models.SystemConfigPatch{})
	assert.ErrorIs(t, err, models.ErrBadRequest)

	on := true
	err = svc.UpdateSystemConfig(context.Background(), "admin-1", models.SystemConfigPatch{MaintenanceMode: &on})
	require.NoError(t, err)
	require.Len(t, audit.Records, 1)
	assert.Equal(t, models.AuditActionConfigUpdate, audit.Records[0].Action)
	assert.Nil(t, audit.Records[0].TargetID)
}

func TestDirectoryService_InsertBackupRecord(t *testing.T) {
	var inserted *models.Backup
	backups := &MockBackupRepository{
		InsertFunc: func(ctx context.Context, b *models.Backup) error { inserted = b; return nil },
	}
	audit := &RecordingAuditRecorder{}
	svc := NewDirectoryService(&MockDirectoryUserRepository{}, &MockSystemConfigRepository{}, backups, &MockStatsProvider{}, audit, slog.Default())

	b, err := svc.InsertBackupRecord(context.Background(), "admin-1", "nightly", "s3://backups/nightly.tgz", 2048)

	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "admin-1", b.CreatedBy)
	require.Len(t, audit.Records, 1)
	assert.Equal(t, models.AuditActionBackupCreate, audit.Records[0].Action)
}

func TestDirectoryService_ListBackups_ClampsLimit(t *testing.T) {
	var gotLimit int
	backups := &MockBackupRepository{
		ListRecentFunc: func(ctx context.Context, limit int) ([]*models.Backup, error) {
			gotLimit = limit
			return []*models.Backup{}, nil
		},
	}
	svc := NewDirectoryService(&MockDirectoryUserRepository{}, &MockSystemConfigRepository{}, backups, &MockStatsProvider{}, &RecordingAuditRecorder{}, slog.Default())

	_, err := svc.ListBackups(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)

	_, err = svc.ListBackups(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, 50, gotLimit)

	_, err = svc.ListBackups(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, gotLimit)
}

// newDirectoryFixture wires the full facade against an in-memory store with
// 25 active and 5 soft-deleted users.
func newDirectoryFixture(t *testing.T) (*DirectoryService, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	col := st.Coll(repositories.CollectionUsers)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		col.Put(fmt.Sprintf("user-%03d", i), store.Document{
			directory.FieldEmail:     fmt.Sprintf("u%03d@example.com", i),
			directory.FieldName:      fmt.Sprintf("User %03d", i),
			directory.FieldRole:      models.RoleUser,
			directory.FieldPlan:      models.PlanFree,
			directory.FieldDeleted:   i >= 25,
			directory.FieldCreatedAt: base.Add(time.Duration(i) * time.Minute),
			directory.FieldUpdatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	logger := slog.Default()
	userRepo := repositories.NewUserRepository(st)
	auditSvc := NewAuditService(repositories.NewAuditLogRepository(st), logger)
	statsSvc := NewStatsService(userRepo, logger)
	svc := NewDirectoryService(userRepo, repositories.NewSystemConfigRepository(st), repositories.NewBackupRepository(st), statsSvc, auditSvc, logger)
	return svc, st
}

func TestDirectoryService_ActiveListingScenario(t *testing.T) {
	svc, _ := newDirectoryFixture(t)
	ctx := context.Background()

	page1, err := svc.ListUsers(ctx, directory.ListFilter{Status: models.StatusActive, Page: 1, Limit: 20, SortOrder: directory.SortAsc, SortBy: "createdAt"})
	require.NoError(t, err)
	assert.Len(t, page1.Users, 20)
	assert.True(t, page1.HasMore)
	assert.Equal(t, int64(25), page1.ApproxTotal)

	page2, err := svc.ListUsers(ctx, directory.ListFilter{Status: models.StatusActive, Page: 2, Limit: 20, SortOrder: directory.SortAsc, SortBy: "createdAt"})
	require.NoError(t, err)
	assert.Len(t, page2.Users, 5)
	assert.False(t, page2.HasMore)

	stats, err := svc.GetUserStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(30), stats.Total)
	assert.Equal(t, int64(25), stats.Active)
	assert.Equal(t, int64(5), stats.Deleted)
	assert.Equal(t, int64(0), stats.Banned)
	assert.Equal(t, int64(0), stats.Inactive)
}

func TestDirectoryService_SoftDeleteVisibilityScenario(t *testing.T) {
	svc, _ := newDirectoryFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.DeleteUser(ctx, "admin-1", "user-000", true))

	u, err := svc.GetUser(ctx, "user-000")
	require.NoError(t, err, "soft-deleted record stays fetchable")
	assert.True(t, u.Deleted)
	assert.NotNil(t, u.DeletedAt)

	require.NoError(t, svc.DeleteUser(ctx, "admin-1", "user-000", false))
	_, err = svc.GetUser(ctx, "user-000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDirectoryService_ConfigMergeScenario(t *testing.T) {
	svc, _ := newDirectoryFixture(t)
	ctx := context.Background()

	on := true
	require.NoError(t, svc.UpdateSystemConfig(ctx, "admin-1", models.SystemConfigPatch{MaintenanceMode: &on}))

	cfg, err := svc.GetSystemConfig(ctx)
	require.NoError(t, err)

	defaults := models.DefaultSystemConfig()
	assert.True(t, cfg.MaintenanceMode)
	assert.Equal(t, defaults.RegistrationAllowed, cfg.RegistrationAllowed)
	assert.Equal(t, defaults.RateLimitPerMinute, cfg.RateLimitPerMinute)
	assert.Equal(t, defaults.MaxUploadSizeBytes, cfg.MaxUploadSizeBytes)
	assert.Equal(t, defaults.AllowedUploadTypes, cfg.AllowedUploadTypes)
	assert.Equal(t, defaults.HandwritingSync, cfg.HandwritingSync)
	assert.Equal(t, defaults.SharedPlanners, cfg.SharedPlanners)
	assert.Equal(t, "admin-1", cfg.UpdatedBy)
}

// Every successful mutation leaves exactly one audit entry, even when the
// audit store itself is failing.
func TestDirectoryService_MutationsAudited(t *testing.T) {
	svc, st := newDirectoryFixture(t)
	ctx := context.Background()

	plan := models.PlanPro
	require.NoError(t, svc.UpdateUser(ctx, "admin-1", "user-001", models.UserPatch{Plan: &plan}))
	require.NoError(t, svc.DeleteUser(ctx, "admin-1", "user-002", true))
	on := true
	require.NoError(t, svc.UpdateSystemConfig(ctx, "admin-1", models.SystemConfigPatch{MaintenanceMode: &on}))

	entries, err := svc.ListAuditEntries(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Newest-first ULID ordering.
	assert.Equal(t, models.AuditActionConfigUpdate, entries[0].Action)
	assert.Equal(t, models.AuditActionUserDelete, entries[1].Action)
	assert.Equal(t, models.AuditActionUserUpdate, entries[2].Action)
	for _, e := range entries {
		assert.Equal(t, "admin-1", e.AdminID)
	}

	// A failing audit store must not fail the operation itself.
	st.Coll(repositories.CollectionAuditLogs).FailWith(models.ErrStoreUnavailable)
	require.NoError(t, svc.DeleteUser(ctx, "admin-1", "user-003", true))

	u, err := svc.GetUser(ctx, "user-003")
	require.NoError(t, err)
	assert.True(t, u.Deleted)
}
