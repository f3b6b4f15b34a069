package repositories

// Collection names. users is owned by the upstream account subsystem; the
// other three are owned by this backend.
const (
	CollectionUsers        = "users"
	CollectionAuditLogs    = "audit_logs"
	CollectionSystemConfig = "system_config"
	CollectionBackups      = "backups"
)
