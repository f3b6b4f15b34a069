package models

import "time"

// SystemConfigID is the document id of the configuration singleton.
const SystemConfigID = "system"

// SystemConfig is the single mutable configuration document. Reads
// materialize DefaultSystemConfig values for any field the stored document
// does not carry; updates merge, they never replace the whole document.
type SystemConfig struct {
	MaintenanceMode     bool
	RegistrationAllowed bool
	RateLimitPerMinute  int
	MaxUploadSizeBytes  int64
	AllowedUploadTypes  []string
	HandwritingSync     bool // feature toggle: handwriting recognition pipeline
	SharedPlanners      bool // feature toggle: multi-user planner sharing
	UpdatedAt           time.Time
	UpdatedBy           string
}

// DefaultSystemConfig returns the documented defaults used when the
// configuration document is absent or missing fields.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		MaintenanceMode:     false,
		RegistrationAllowed: true,
		RateLimitPerMinute:  120,
		MaxUploadSizeBytes:  25 << 20, // 25 MiB
		AllowedUploadTypes:  []string{"image/png", "image/jpeg", "application/pdf"},
		HandwritingSync:     true,
		SharedPlanners:      false,
	}
}

// SystemConfigPatch is a partial configuration update. Nil fields are
// preserved as stored.
type SystemConfigPatch struct {
	MaintenanceMode     *bool
	RegistrationAllowed *bool
	RateLimitPerMinute  *int
	MaxUploadSizeBytes  *int64
	AllowedUploadTypes  []string
	HandwritingSync     *bool
	SharedPlanners      *bool
}

// IsEmpty reports whether the patch would change nothing.
func (p SystemConfigPatch) IsEmpty() bool {
	return p.MaintenanceMode == nil &&
		p.RegistrationAllowed == nil &&
		p.RateLimitPerMinute == nil &&
		p.MaxUploadSizeBytes == nil &&
		p.AllowedUploadTypes == nil &&
		p.HandwritingSync == nil &&
		p.SharedPlanners == nil
}
