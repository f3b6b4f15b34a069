package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/directory"
	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/store"
	"github.com/inkwell-app/inkwell-api/pkg/idx"
)

// DirectoryUserRepository is the subset of UserRepository methods the facade
// needs.
type DirectoryUserRepository interface {
	FindPage(ctx context.Context, q store.Query, page, limit int) (*models.UserPage, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, patch models.UserPatch, now time.Time) error
	SoftDelete(ctx context.Context, id string, now time.Time) error
	HardDelete(ctx context.Context, id string) error
}

// SystemConfigRepository is the configuration singleton surface.
type SystemConfigRepository interface {
	Get(ctx context.Context) (*models.SystemConfig, error)
	Merge(ctx context.Context, patch models.SystemConfigPatch, adminID string, now time.Time) (store.Document, error)
}

// BackupRepository is the backup bookkeeping surface.
type BackupRepository interface {
	Insert(ctx context.Context, b *models.Backup) error
	ListRecent(ctx context.Context, limit int) ([]*models.Backup, error)
	GetByID(ctx context.Context, id string) (*models.Backup, error)
}

// StatsProvider computes directory statistics.
type StatsProvider interface {
	SystemStats(ctx context.Context) (*models.SystemStats, error)
	UserStats(ctx context.Context) (*models.UserStats, error)
}

// AuditRecorder records administrative mutations, best-effort.
type AuditRecorder interface {
	Record(ctx context.Context, adminID, action, targetType string, targetID *string, details map[string]any)
	List(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error)
}

// DirectoryService is the administrative facade: user listing and mutation,
// statistics, the configuration singleton and backup bookkeeping. Every
// mutating method audits the change with the acting administrator after the
// mutation succeeds.
type DirectoryService struct {
	users   DirectoryUserRepository
	config  SystemConfigRepository
	backups BackupRepository
	stats   StatsProvider
	audit   AuditRecorder
	logger  *slog.Logger
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(
	users DirectoryUserRepository,
	config SystemConfigRepository,
	backups BackupRepository,
	stats StatsProvider,
	audit AuditRecorder,
	logger *slog.Logger,
) *DirectoryService {
	return &DirectoryService{
		users:   users,
		config:  config,
		backups: backups,
		stats:   stats,
		audit:   audit,
		logger:  logger,
	}
}

// ListUsers validates and compiles the filter, then fetches one page.
// Validation and compilation errors surface before any store round trip.
func (s *DirectoryService) ListUsers(ctx context.Context, f directory.ListFilter) (*models.UserPage, error) {
	norm, err := f.Validate()
	if err != nil {
		return nil, err
	}
	q, err := directory.Compile(norm, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return s.users.FindPage(ctx, q, norm.Page, norm.Limit)
}

// GetUser fetches one user by id, soft-deleted users included.
func (s *DirectoryService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateUser applies a partial update, stamps updatedAt and audits the
// change with before/after values.
func (s *DirectoryService) UpdateUser(ctx context.Context, adminID, id string, patch models.UserPatch) error {
	if patch.IsEmpty() {
		return fmt.Errorf("empty user update: %w", models.ErrBadRequest)
	}

	before, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.users.Update(ctx, id, patch, now); err != nil {
		return err
	}

	details := map[string]any{}
	if patch.Name != nil {
		details["name"] = changed(before.Name, *patch.Name)
	}
	if patch.Role != nil {
		details["role"] = changed(before.Role, *patch.Role)
	}
	if patch.Plan != nil {
		details["plan"] = changed(before.Plan, *patch.Plan)
	}
	if patch.Unlock {
		details["lockedUntil"] = changed(before.LockedUntil, nil)
	} else if patch.LockedUntil != nil {
		details["lockedUntil"] = changed(before.LockedUntil, patch.LockedUntil.UTC())
	}
	s.audit.Record(ctx, adminID, models.AuditActionUserUpdate, models.AuditTargetUser, &id, details)
	return nil
}

// DeleteUser soft- or hard-deletes a user. Soft delete sets the flag and a
// deletion timestamp, retaining the record; hard delete removes it
// irreversibly.
func (s *DirectoryService) DeleteUser(ctx context.Context, adminID, id string, soft bool) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if soft {
		err = s.users.SoftDelete(ctx, id, time.Now().UTC())
	} else {
		err = s.users.HardDelete(ctx, id)
	}
	if err != nil {
		return err
	}

	s.audit.Record(ctx, adminID, models.AuditActionUserDelete, models.AuditTargetUser, &id, map[string]any{
		"soft":  soft,
		"email": user.Email,
	})
	return nil
}

// GetSystemStatistics returns the dashboard scalar counts.
func (s *DirectoryService) GetSystemStatistics(ctx context.Context) (*models.SystemStats, error) {
	return s.stats.SystemStats(ctx)
}

// GetUserStatistics returns the status and category breakdown.
func (s *DirectoryService) GetUserStatistics(ctx context.Context) (*models.UserStats, error) {
	return s.stats.UserStats(ctx)
}

// GetSystemConfig reads the configuration singleton, with documented
// defaults for anything unset.
func (s *DirectoryService) GetSystemConfig(ctx context.Context) (*models.SystemConfig, error) {
	return s.config.Get(ctx)
}

// UpdateSystemConfig merge-writes the configuration singleton and audits the
// written fields. Unspecified fields are preserved, never replaced.
func (s *DirectoryService) UpdateSystemConfig(ctx context.Context, adminID string, patch models.SystemConfigPatch) error {
	if patch.IsEmpty() {
		return fmt.Errorf("empty config update: %w", models.ErrBadRequest)
	}

	fields, err := s.config.Merge(ctx, patch, adminID, time.Now().UTC())
	if err != nil {
		return err
	}

	s.audit.Record(ctx, adminID, models.AuditActionConfigUpdate, models.AuditTargetConfig, nil, map[string]any(fields))
	return nil
}

// InsertBackupRecord books a new backup snapshot record.
func (s *DirectoryService) InsertBackupRecord(ctx context.Context, adminID, name, location string, sizeBytes int64) (*models.Backup, error) {
	b := &models.Backup{
		ID:        idx.New(),
		Name:      name,
		Location:  location,
		SizeBytes: sizeBytes,
		CreatedBy: adminID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.backups.Insert(ctx, b); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, adminID, models.AuditActionBackupCreate, models.AuditTargetBackup, &b.ID, map[string]any{
		"name":      name,
		"sizeBytes": sizeBytes,
	})
	return b, nil
}

// ListBackups returns backup records newest-first. limit is clamped to a
// maximum of 100.
func (s *DirectoryService) ListBackups(ctx context.Context, limit int) ([]*models.Backup, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.backups.ListRecent(ctx, limit)
}

// GetBackupByID fetches one backup record.
func (s *DirectoryService) GetBackupByID(ctx context.Context, id string) (*models.Backup, error) {
	return s.backups.GetByID(ctx, id)
}

// RecordAuditEntry exposes the audit recorder to callers that mutate outside
// this facade.
func (s *DirectoryService) RecordAuditEntry(ctx context.Context, adminID, action, targetType string, targetID *string, details map[string]any) {
	s.audit.Record(ctx, adminID, action, targetType, targetID, details)
}

// ListAuditEntries returns audit entries newest-first, optionally filtered
// to one administrator.
func (s *DirectoryService) ListAuditEntries(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error) {
	return s.audit.List(ctx, adminID, limit)
}

// changed records one field transition for audit detail.
func changed(from, to any) map[string]any {
	return map[string]any{"from": from, "to": to}
}
