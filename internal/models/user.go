/*
 * Package models defines the wire-level types exchanged with the
 * support-portal backend.
 */
package models

import "time"

// Role is one of the closed set of role tags assigned by the backend
type Role string

const (
	RoleUser       Role = "ROLE_USER"
	RoleHR         Role = "ROLE_HR"
	RoleManager    Role = "ROLE_MANAGER"
	RoleAdmin      Role = "ROLE_ADMIN"
	RoleSuperAdmin Role = "ROLE_SUPER_ADMIN"
)

// IsAdmin reports whether the role carries admin privileges
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// IsManager reports whether the role carries at least manager privileges
func (r Role) IsManager() bool {
	return r.IsAdmin() || r == RoleManager
}

// User represents a portal user record. The id and username are assigned
// server-side and are immutable after creation; updates locate the record
// through a separate correlation username, never through these fields.
type User struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	ProfileImageURL string     `json:"profileImageUrl"`
	Role            Role       `json:"role"`
	Active          bool       `json:"active"`
	NotLocked       bool       `json:"notLocked"`
	JoinDate        *time.Time `json:"joinDate,omitempty"`
	LastLoginDate   *time.Time `json:"lastLoginDate,omitempty"`
}

// DisplayName returns the user's full name for notification messages
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
