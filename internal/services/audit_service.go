package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/pkg/idx"
)

// AuditLogRepository is the persistence surface AuditService needs.
type AuditLogRepository interface {
	Append(ctx context.Context, e *models.AuditEntry) error
	ListRecent(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error)
}

// AuditService records administrative mutations with a dual-write pattern
// (slog + store). The store write is best-effort: a failure there is logged
// and swallowed so it can never delay, fail or roll back the operation that
// triggered it. This boundary is deliberate, not an accident of error
// handling.
type AuditService struct {
	repo   AuditLogRepository
	logger *slog.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo AuditLogRepository, logger *slog.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Record appends one immutable entry with a generated ULID id and server
// timestamp. It never returns an error.
func (s *AuditService) Record(ctx context.Context, adminID, action, targetType string, targetID *string, details map[string]any) {
	entry := &models.AuditEntry{
		ID:         idx.New(),
		AdminID:    adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}

	// Dual-write: immediate slog output
	s.logger.InfoContext(ctx, "audit event",
		slog.String("admin_id", adminID),
		slog.String("action", action),
		slog.String("target_type", targetType),
		slog.Any("target_id", targetID),
		slog.Any("details", details),
	)

	if err := s.repo.Append(ctx, entry); err != nil {
		// Non-critical: the administrative operation already succeeded.
		s.logger.ErrorContext(ctx, "failed to persist audit entry",
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}

// List retrieves entries newest-first, optionally filtered to one
// administrator. limit is clamped to a maximum of 100.
func (s *AuditService) List(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	entries, err := s.repo.ListRecent(ctx, adminID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
