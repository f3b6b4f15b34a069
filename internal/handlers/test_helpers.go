package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell-app/inkwell-api/internal/auth"
	"github.com/inkwell-app/inkwell-api/internal/directory"
	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAdminContext attaches an admin principal to the request context
func WithAdminContext(req *http.Request, adminID string) *http.Request {
	ctx := auth.ContextWithPrincipal(req.Context(), auth.Principal{AdminID: adminID, Role: "admin"})
	return req.WithContext(ctx)
}

// WithURLParam attaches a chi route parameter to the request context
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks status and decodes the JSON body into target
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "response status mismatch")
	if target != nil {
		if err := json.NewDecoder(w.Body).Decode(target); err != nil {
			t.Fatalf("failed to decode response body: %v", err)
		}
	}
}

// MockDirectoryService implements DirectoryServiceInterface for testing
type MockDirectoryService struct {
	ListUsersFunc          func(ctx context.Context, f directory.ListFilter) (*models.UserPage, error)
	GetUserFunc            func(ctx context.Context, id string) (*models.User, error)
	UpdateUserFunc         func(ctx context.Context, adminID, id string, patch models.UserPatch) error
	DeleteUserFunc         func(ctx context.Context, adminID, id string, soft bool) error
	GetSystemStatsFunc     func(ctx context.Context) (*models.SystemStats, error)
	GetUserStatsFunc       func(ctx context.Context) (*models.UserStats, error)
	GetSystemConfigFunc    func(ctx context.Context) (*models.SystemConfig, error)
	UpdateSystemConfigFunc func(ctx context.Context, adminID string, patch models.SystemConfigPatch) error
	InsertBackupFunc       func(ctx context.Context, adminID, name, location string, sizeBytes int64) (*models.Backup, error)
	ListBackupsFunc        func(ctx context.Context, limit int) ([]*models.Backup, error)
	GetBackupByIDFunc      func(ctx context.Context, id string) (*models.Backup, error)
	ListAuditEntriesFunc   func(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error)
}

func (m *MockDirectoryService) ListUsers(ctx context.Context, f directory.ListFilter) (*models.UserPage, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, f)
	}
	return &models.UserPage{Users: []*models.User{}}, nil
}

func (m *MockDirectoryService) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockDirectoryService) UpdateUser(ctx context.Context, adminID, id string, patch models.UserPatch) error {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, adminID, id, patch)
	}
	return nil
}

func (m *MockDirectoryService) DeleteUser(ctx context.Context, adminID, id string, soft bool) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, adminID, id, soft)
	}
	return nil
}

func (m *MockDirectoryService) GetSystemStatistics(ctx context.Context) (*models.SystemStats, error) {
	if m.GetSystemStatsFunc != nil {
		return m.GetSystemStatsFunc(ctx)
	}
	return &models.SystemStats{}, nil
}

func (m *MockDirectoryService) GetUserStatistics(ctx context.Context) (*models.UserStats, error) {
	if m.GetUserStatsFunc != nil {
		return m.GetUserStatsFunc(ctx)
	}
	return &models.UserStats{}, nil
}

func (m *MockDirectoryService) GetSystemConfig(ctx context.Context) (*models.SystemConfig, error) {
	if m.GetSystemConfigFunc != nil {
		return m.GetSystemConfigFunc(ctx)
	}
	cfg := models.DefaultSystemConfig()
	return &cfg, nil
}

func (m *MockDirectoryService) UpdateSystemConfig(ctx context.Context, adminID string, patch models.SystemConfigPatch) error {
	if m.UpdateSystemConfigFunc != nil {
		return m.UpdateSystemConfigFunc(ctx, adminID, patch)
	}
	return nil
}

func (m *MockDirectoryService) InsertBackupRecord(ctx context.Context, adminID, name, location string, sizeBytes int64) (*models.Backup, error) {
	if m.InsertBackupFunc != nil {
		return m.InsertBackupFunc(ctx, adminID, name, location, sizeBytes)
	}
	return &models.Backup{ID: "backup-1", Name: name, Location: location, SizeBytes: sizeBytes, CreatedBy: adminID}, nil
}

func (m *MockDirectoryService) ListBackups(ctx context.Context, limit int) ([]*models.Backup, error) {
	if m.ListBackupsFunc != nil {
		return m.ListBackupsFunc(ctx, limit)
	}
	return []*models.Backup{}, nil
}

func (m *MockDirectoryService) GetBackupByID(ctx context.Context, id string) (*models.Backup, error) {
	if m.GetBackupByIDFunc != nil {
		return m.GetBackupByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockDirectoryService) ListAuditEntries(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error) {
	if m.ListAuditEntriesFunc != nil {
		return m.ListAuditEntriesFunc(ctx, adminID, limit)
	}
	return []*models.AuditEntry{}, nil
}
