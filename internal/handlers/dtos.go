package handlers

import (
	"time"

	"github.com/inkwell-app/inkwell-api/internal/models"
)

// UserResponse is the wire shape of a directory user. Status is derived at
// response time, it is not a stored field.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Plan        string     `json:"plan"`
	Status      string     `json:"status"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	LockedUntil *time.Time `json:"lockedUntil,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ListUsersResponse is one page of the directory listing.
type ListUsersResponse struct {
	Users       []UserResponse `json:"users"`
	HasMore     bool           `json:"hasMore"`
	ApproxTotal int64          `json:"approxTotal"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Plan:        u.Plan,
		Status:      u.DirectoryStatus(time.Now().UTC()),
		DeletedAt:   u.DeletedAt,
		LockedUntil: u.LockedUntil,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
