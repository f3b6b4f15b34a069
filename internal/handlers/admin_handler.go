package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/inkwell-app/inkwell-api/internal/auth"
	"github.com/inkwell-app/inkwell-api/internal/directory"
	"github.com/inkwell-app/inkwell-api/internal/models"
	"github.com/inkwell-app/inkwell-api/pkg/httpx"
)

// DirectoryServiceInterface defines the facade contract the admin handler
// depends on.
type DirectoryServiceInterface interface {
	ListUsers(ctx context.Context, f directory.ListFilter) (*models.UserPage, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, adminID, id string, patch models.UserPatch) error
	DeleteUser(ctx context.Context, adminID, id string, soft bool) error
	GetSystemStatistics(ctx context.Context) (*models.SystemStats, error)
	GetUserStatistics(ctx context.Context) (*models.UserStats, error)
	GetSystemConfig(ctx context.Context) (*models.SystemConfig, error)
	UpdateSystemConfig(ctx context.Context, adminID string, patch models.SystemConfigPatch) error
	InsertBackupRecord(ctx context.Context, adminID, name, location string, sizeBytes int64) (*models.Backup, error)
	ListBackups(ctx context.Context, limit int) ([]*models.Backup, error)
	GetBackupByID(ctx context.Context, id string) (*models.Backup, error)
	ListAuditEntries(ctx context.Context, adminID *string, limit int) ([]*models.AuditEntry, error)
}

// AdminHandler handles administrative directory HTTP requests.
type AdminHandler struct {
	service DirectoryServiceInterface
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service DirectoryServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsersRequest is the query-parameter shape of GET /admin/users.
type ListUsersRequest struct {
	Search    string `validate:"max=320"`
	Role      string `validate:"omitempty,oneof=user moderator admin"`
	Plan      string `validate:"omitempty,oneof=free pro studio"`
	Status    string `validate:"omitempty,oneof=active deleted banned"`
	SortOrder string `validate:"omitempty,oneof=asc desc"`
	Page      int    `validate:"omitempty,gte=1"`
	Limit     int    `validate:"omitempty,gte=1,lte=100"`
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	req := ListUsersRequest{
		Search:    qs.Get("search"),
		Role:      qs.Get("role"),
		Plan:      qs.Get("plan"),
		Status:    qs.Get("status"),
		SortOrder: qs.Get("sortOrder"),
	}
	if v := qs.Get("page"); v != "" {
		req.Page, _ = strconv.Atoi(v)
	}
	if v := qs.Get("limit"); v != "" {
		req.Limit, _ = strconv.Atoi(v)
	}
	if err := ValidateRequest(req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}

	f := directory.ListFilter{
		Search:    req.Search,
		Role:      req.Role,
		Plan:      req.Plan,
		Status:    req.Status,
		SortBy:    qs.Get("sortBy"),
		SortOrder: req.SortOrder,
		Page:      req.Page,
		Limit:     req.Limit,
	}
	var err error
	if f.CreatedFrom, err = parseTimeParam(qs.Get("createdFrom")); err != nil {
		httpx.WriteBadRequest(w, "createdFrom must be RFC 3339")
		return
	}
	if f.CreatedTo, err = parseTimeParam(qs.Get("createdTo")); err != nil {
		httpx.WriteBadRequest(w, "createdTo must be RFC 3339")
		return
	}

	page, err := h.service.ListUsers(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	users := make([]UserResponse, 0, len(page.Users))
	for _, u := range page.Users {
		users = append(users, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, ListUsersResponse{
		Users:       users,
		HasMore:     page.HasMore,
		ApproxTotal: page.ApproxTotal,
	})
}

// GetUser handles GET /admin/users/{id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateUserRequest is the PATCH /admin/users/{id} body.
type UpdateUserRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Role        *string    `json:"role" validate:"omitempty,oneof=user moderator admin"`
	Plan        *string    `json:"plan" validate:"omitempty,oneof=free pro studio"`
	LockedUntil *time.Time `json:"lockedUntil"`
	Unlock      bool       `json:"unlock"`
}

// UpdateUser handles PATCH /admin/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	var req UpdateUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}
	if req.Unlock && req.LockedUntil != nil {
		httpx.WriteBadRequest(w, "unlock and lockedUntil are mutually exclusive")
		return
	}

	patch := models.UserPatch{
		Name:        req.Name,
		Role:        req.Role,
		Plan:        req.Plan,
		LockedUntil: req.LockedUntil,
		Unlock:      req.Unlock,
	}
	if err := h.service.UpdateUser(r.Context(), principal.AdminID, chi.URLParam(r, "id"), patch); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser handles DELETE /admin/users/{id}. Deletion is soft unless
// ?hard=true is given.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	hard := r.URL.Query().Get("hard") == "true"
	if err := h.service.DeleteUser(r.Context(), principal.AdminID, chi.URLParam(r, "id"), !hard); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSystemStats handles GET /admin/stats/system
func (h *AdminHandler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetSystemStatistics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// GetUserStats handles GET /admin/stats/users
func (h *AdminHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetUserStatistics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// GetSystemConfig handles GET /admin/config
func (h *AdminHandler) GetSystemConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetSystemConfig(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cfg)
}

// UpdateSystemConfigRequest is the PATCH /admin/config body.
type UpdateSystemConfigRequest struct {
	MaintenanceMode     *bool    `json:"maintenanceMode"`
	RegistrationAllowed *bool    `json:"registrationAllowed"`
	RateLimitPerMinute  *int     `json:"rateLimitPerMinute" validate:"omitempty,gte=1,lte=10000"`
	MaxUploadSizeBytes  *int64   `json:"maxUploadSizeBytes" validate:"omitempty,gte=1"`
	AllowedUploadTypes  []string `json:"allowedUploadTypes" validate:"omitempty,dive,min=1"`
	HandwritingSync     *bool    `json:"handwritingSync"`
	SharedPlanners      *bool    `json:"sharedPlanners"`
}

// UpdateSystemConfig handles PATCH /admin/config
func (h *AdminHandler) UpdateSystemConfig(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	var req UpdateSystemConfigRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}

	patch := models.SystemConfigPatch{
		MaintenanceMode:     req.MaintenanceMode,
		RegistrationAllowed: req.RegistrationAllowed,
		RateLimitPerMinute:  req.RateLimitPerMinute,
		MaxUploadSizeBytes:  req.MaxUploadSizeBytes,
		AllowedUploadTypes:  req.AllowedUploadTypes,
		HandwritingSync:     req.HandwritingSync,
		SharedPlanners:      req.SharedPlanners,
	}
	if err := h.service.UpdateSystemConfig(r.Context(), principal.AdminID, patch); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAuditEntries handles GET /admin/audit. Accepts optional ?adminId= and
// ?limit= query params.
func (h *AdminHandler) ListAuditEntries(w http.ResponseWriter, r *http.Request) {
	var adminID *string
	if v := r.URL.Query().Get("adminId"); v != "" {
		adminID = &v
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	entries, err := h.service.ListAuditEntries(r.Context(), adminID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

// CreateBackupRequest is the POST /admin/backups body.
type CreateBackupRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Location  string `json:"location" validate:"required,min=1"`
	SizeBytes int64  `json:"sizeBytes" validate:"gte=0"`
}

// CreateBackup handles POST /admin/backups
func (h *AdminHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return
	}

	var req CreateBackupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}

	b, err := h.service.InsertBackupRecord(r.Context(), principal.AdminID, req.Name, req.Location, req.SizeBytes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

// ListBackups handles GET /admin/backups
func (h *AdminHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	backups, err := h.service.ListBackups(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, backups)
}

// GetBackup handles GET /admin/backups/{id}
func (h *AdminHandler) GetBackup(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBackupByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func parseTimeParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// writeServiceError maps the service error taxonomy onto HTTP statuses
// without leaking backend internals.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case models.IsClientError(err):
		httpx.WriteBadRequest(w, err.Error())
	case errors.Is(err, models.ErrNotFound):
		httpx.WriteNotFound(w, "resource not found")
	case errors.Is(err, models.ErrConflict):
		httpx.WriteConflict(w, "resource already exists")
	case errors.Is(err, models.ErrStoreTimeout):
		httpx.WriteTimeout(w, "the directory store timed out")
	case errors.Is(err, models.ErrStoreUnavailable):
		httpx.WriteUnavailable(w, "the directory store is unavailable")
	default:
		httpx.WriteInternalError(w, models.ErrInternalServer.Error())
	}
}
