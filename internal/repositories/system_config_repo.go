package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/internal/store"
)

// SystemConfigRepository owns the configuration singleton document.
type SystemConfigRepository struct {
	col store.Collection
}

// NewSystemConfigRepository creates a new SystemConfigRepository.
func NewSystemConfigRepository(st store.Store) *SystemConfigRepository {
	return &SystemConfigRepository{col: st.Collection(CollectionSystemConfig)}
}

// Get reads the configuration, materializing documented defaults for any
// field the stored document does not carry. An absent document yields the
// full default set; nothing is written back on the read path.
func (r *SystemConfigRepository) Get(ctx context.Context) (*models.SystemConfig, error) {
	cfg := models.DefaultSystemConfig()

	d, err := r.col.Get(ctx, models.SystemConfigID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("get system config: %w", err)
	}

	if v, ok := d["maintenanceMode"].(bool); ok {
		cfg.MaintenanceMode = v
	}
	if v, ok := d["registrationAllowed"].(bool); ok {
		cfg.RegistrationAllowed = v
	}
	if _, ok := d["rateLimitPerMinute"]; ok {
		cfg.RateLimitPerMinute = int(d.Int64("rateLimitPerMinute"))
	}
	if _, ok := d["maxUploadSizeBytes"]; ok {
		cfg.MaxUploadSizeBytes = d.Int64("maxUploadSizeBytes")
	}
	if v := d.Strings("allowedUploadTypes"); v != nil {
		cfg.AllowedUploadTypes = v
	}
	if v, ok := d["handwritingSync"].(bool); ok {
		cfg.HandwritingSync = v
	}
	if v, ok := d["sharedPlanners"].(bool); ok {
		cfg.SharedPlanners = v
	}
	cfg.UpdatedAt = d.Time("updatedAt")
	cfg.UpdatedBy = d.String("updatedBy")

	return &cfg, nil
}

// Merge applies a partial update, preserving every field the patch leaves
// nil. The first update may also create the document. It returns the fields
// it wrote, for audit detail.
func (r *SystemConfigRepository) Merge(ctx context.Context, patch models.SystemConfigPatch, adminID string, now time.Time) (store.Document, error) {
	fields := store.Document{
		"updatedAt": now.UTC(),
		"updatedBy": adminID,
	}
	if patch.MaintenanceMode != nil {
		fields["maintenanceMode"] = *patch.MaintenanceMode
	}
	if patch.RegistrationAllowed != nil {
		fields["registrationAllowed"] = *patch.RegistrationAllowed
	}
	if patch.RateLimitPerMinute != nil {
		fields["rateLimitPerMinute"] = int64(*patch.RateLimitPerMinute)
	}
	if patch.MaxUploadSizeBytes != nil {
		fields["maxUploadSizeBytes"] = *patch.MaxUploadSizeBytes
	}
	if patch.AllowedUploadTypes != nil {
		vs := make([]any, 0, len(patch.AllowedUploadTypes))
		for _, s := range patch.AllowedUploadTypes {
			vs = append(vs, s)
		}
		fields["allowedUploadTypes"] = vs
	}
	if patch.HandwritingSync != nil {
		fields["handwritingSync"] = *patch.HandwritingSync
	}
	if patch.SharedPlanners != nil {
		fields["sharedPlanners"] = *patch.SharedPlanners
	}

	if err := r.col.Merge(ctx, models.SystemConfigID, fields, true); err != nil {
		return nil, fmt.Errorf("merge system config: %w", err)
	}
	return fields, nil
}
