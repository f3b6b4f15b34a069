package services

import (
	"context"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/store"
)

// NewTestUser builds an active user record for tests.
func NewTestUser(id, email, name string) *models.User {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      models.RoleUser,
		Plan:      models.PlanFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MockDirectoryUserRepository implements DirectoryUserRepository for testing
type MockDirectoryUserRepository struct {
	FindPageFunc   func(ctx context.Context, q store.Query, page, limit int) (*models.UserPage, error)
	GetByIDFunc    func(ctx context.Context, id string) (*models.User, error)
	UpdateFunc     func(ctx context.Context, id string, patch models.UserPatch, now time.Time) error
	SoftDeleteFunc func(ctx context.Context, id string, now time.Time) error
	HardDeleteFunc func(ctx context.Context, id string) error
}

func (m *MockDirectoryUserRepository) FindPage(ctx context.Context, q store.Query, page, limit int) (*models.UserPage, error) {
	if m.FindPageFunc != nil {
		return m.FindPageFunc(ctx, q, page, limit)
	}
	return &models.UserPage{Users: []*models.User{}}, nil
}

func (m *MockDirectoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockDirectoryUserRepository) Update(ctx context.Context, id string, patch models.UserPatch, now time.Time) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch, now)
	}
	return nil
}

func (m *MockDirectoryUserRepository) SoftDelete(ctx context.Context, id string, now time.Time) error {
	if m.SoftDeleteFunc != nil {
		return m.SoftDeleteFunc(ctx, id, now)
	}
	return nil
}

func (m *MockDirectoryUserRepository) HardDelete(ctx context.Context, id string) error {
	if m.HardDeleteFunc != nil {
		return m.HardDeleteFunc(ctx, id)
	}
	return nil
}

// MockSystemConfigRepository implements SystemConfigRepository for testing
type MockSystemConfigRepository struct {
	GetFunc   func(ctx context.Context) (*models.SystemConfig, error)
	MergeFunc func(ctx context.Context, patch models.SystemConfigPatch, adminID string, now time.Time) (store.Document, error)
}

func (m *MockSystemConfigRepository) Get(ctx context.Context) (*models.SystemConfig, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	cfg := models.DefaultSystemConfig()
	return &cfg, nil
}

func (m *MockSystemConfigRepository) Merge(ctx context.Context, patch models.SystemConfigPatch, adminID string, now time.Time) (store.Document, error) {
	if m.MergeFunc != nil {
		return m.MergeFunc(ctx, patch, adminID, now)
	}
	return store.Document{}, nil
}

// MockBackupRepository implements BackupRepository for testing
type MockBackupRepository struct {
	InsertFunc     func(ctx context.Context, b *models.Backup) error
	ListRecentFunc func(ctx context.Context, limit int) ([]*models.Backup, error)
	GetByIDFunc    func(ctx context.Context, id string) (*models.Backup, error)
}

func (m *MockBackupRepository) Insert(ctx context.Context, b *models.Backup) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, b)
	}
	return nil
}

func (m *MockBackupRepository) ListRecent(ctx context.Context, limit int) ([]*models.Backup, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return []*models.Backup{}, nil
}

func (m *MockBackupRepository) GetByID(ctx context.Context, id string) (*models.Backup, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// MockStatsProvider implements StatsProvider for testing
type MockStatsProvider struct {
	SystemStatsFunc func(ctx context.Context) (*models.SystemStats, error)
	UserStatsFunc   func(ctx context.Context) (*models.UserStats, error)
}

func (m *MockStatsProvider) SystemStats(ctx context.Context) (*models.SystemStats, error) {
	if m.SystemStatsFunc != nil {
		return m.SystemStatsFunc(ctx)
	}
	return &models.SystemStats{}, nil
}

func (m *MockStatsProvider) UserStats(ctx context.Context) (*models.UserStats, error) {
	if m.UserStatsFunc != nil {
		return m.UserStatsFunc(ctx)
	}
	return &models.UserStats{}, nil
}

// RecordedAudit captures one Record call made against RecordingAuditRecorder.
type RecordedAudit struct {
	AdminID    string
	Action     string
	TargetType string
	TargetID   *string
	Details    map[string]any
}

// RecordingAuditRecorder implements AuditRecorder and captures every call.
type RecordingAuditRecorder struct {
	Records  []RecordedAudit
	ListFunc func(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error)
}

func (r *RecordingAuditRecorder) Record(ctx context.Context, adminID, action, targetType string, targetID *string, details map[string]any) {
	r.Records = append(r.Records, RecordedAudit{
		AdminID:    adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	})
}

func (r *RecordingAuditRecorder) List(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error) {
	if r.ListFunc != nil {
		return r.ListFunc(ctx, adminID, limit)
	}
	return []*models.AuditEntry{}, nil
}

// MockAuditLogRepository implements AuditLogRepository for testing
type MockAuditLogRepository struct {
	AppendFunc     func(ctx context.Context, e *models.AuditEntry) error
	ListRecentFunc func(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error)
}

func (m *MockAuditLogRepository) Append(ctx context.Context, e *models.AuditEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, e)
	}
	return nil
}

func (m *MockAuditLogRepository) ListRecent(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, adminID, limit)
	}
	return []*models.AuditEntry{}, nil
}

// MockStatsUserRepository implements StatsUserRepository for testing
type MockStatsUserRepository struct {
	CountAllFunc           func(ctx context.Context) (int64, error)
	CountActiveSinceFunc   func(ctx context.Context, t time.Time) (int64, error)
	CountCreatedSinceFunc  func(ctx context.Context, t time.Time) (int64, error)
	CountBannedFunc        func(ctx context.Context, now time.Time) (int64, error)
	ScanClassificationFunc func(ctx context.Context, visit func(store.Document)) error
}

func (m *MockStatsUserRepository) CountAll(ctx context.Context) (int64, error) {
	if m.CountAllFunc != nil {
		return m.CountAllFunc(ctx)
	}
	return 0, nil
}

func (m *MockStatsUserRepository) CountActiveSince(ctx context.Context, t time.Time) (int64, error) {
	if m.CountActiveSinceFunc != nil {
		return m.CountActiveSinceFunc(ctx, t)
	}
	return 0, nil
}

func (m *MockStatsUserRepository) CountCreatedSince(ctx context.Context, t time.Time) (int64, error) {
	if m.CountCreatedSinceFunc != nil {
		return m.CountCreatedSinceFunc(ctx, t)
	}
	return 0, nil
}

func (m *MockStatsUserRepository) CountBanned(ctx context.Context, now time.Time) (int64, error) {
	if m.CountBannedFunc != nil {
		return m.CountBannedFunc(ctx, now)
	}
	return 0, nil
}

func (m *MockStatsUserRepository) ScanClassification(ctx context.Context, visit func(store.Document)) error {
	if m.ScanClassificationFunc != nil {
		return m.ScanClassificationFunc(ctx, visit)
	}
	return nil
}
