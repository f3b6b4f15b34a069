package models

import "time"

// Backup is a bookkeeping record for an exported data snapshot. The snapshot
// artifact itself lives in object storage; this record only tracks it.
type Backup struct {
	ID        string
	Name      string
	Location  string // storage path or object key
	SizeBytes int64
	CreatedBy string // administrator id
	CreatedAt time.Time
}
