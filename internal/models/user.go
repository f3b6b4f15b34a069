package models

import (
	"time"
)

// Roles
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Subscription plans
const (
	PlanFree   = "free"
	PlanPro    = "pro"
	PlanStudio = "studio"
)

// Directory status values. "banned" is derived from LockedUntil, not stored.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
	StatusBanned  = "banned"
)

// User is a planner account record. The collection is owned by the upstream
// account subsystem; this backend only reads users and applies administrative
// mutations to them.
type User struct {
	ID          string     // immutable, assigned at creation, never reused
	Email       string     // stored lowercase for case-insensitive prefix search
	Name        string
	Role        string     // "user", "moderator", "admin"
	Plan        string     // "free", "pro", "studio"
	Deleted     bool       // soft-delete flag
	DeletedAt   *time.Time
	LockedUntil *time.Time // lock expiration; a future value means banned
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DirectoryStatus classifies the user for directory filtering and statistics.
// Precedence: soft-deleted, then banned (lock still in the future), then active.
func (u *User) DirectoryStatus(now time.Time) string {
	if u.Deleted {
		return StatusDeleted
	}
	if u.LockedUntil != nil && u.LockedUntil.After(now) {
		return StatusBanned
	}
	return StatusActive
}

// UserPatch is a partial administrative update. Nil fields are left untouched.
type UserPatch struct {
	Name        *string
	Role        *string
	Plan        *string
	LockedUntil *time.Time
	Unlock      bool // clears LockedUntil; mutually exclusive with LockedUntil
}

// IsEmpty reports whether the patch would change nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Role == nil && p.Plan == nil && p.LockedUntil == nil && !p.Unlock
}

// UserPage is one page of a directory listing. ApproxTotal comes from the
// store's fast count and may lag the page contents; callers must treat it as
// an eventually consistent snapshot, not an exact row count.
type UserPage struct {
	Users       []*User
	HasMore     bool
	ApproxTotal int64
}
