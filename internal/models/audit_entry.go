package models

import "time"

// Audit actions
const (
	AuditActionUserUpdate   = "user.update"
	AuditActionUserDelete   = "user.delete"
	AuditActionConfigUpdate = "config.update"
	AuditActionBackupCreate = "backup.create"
)

// Audit target types
const (
	AuditTargetUser   = "user"
	AuditTargetConfig = "system_config"
	AuditTargetBackup = "backup"
)

// AuditEntry is one immutable record of an administrative mutation.
// Entries are created once and never updated; the id is a ULID so
// lexicographic order is creation order.
type AuditEntry struct {
	ID         string
	AdminID    string
	Action     string
	TargetType string
	TargetID   *string
	Details    map[string]any
	CreatedAt  time.Time
}
