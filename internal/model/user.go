package model

import "time"

// User represents an account in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type User struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	Username          string     `json:"username"`
	HashedPassword    string     `json:"-"`
	FirstName         string     `json:"first_name,omitempty"`
	LastName          string     `json:"last_name,omitempty"`
	RoleID            int64      `json:"role_id"`
	IsActive          bool       `json:"is_active"`
	IsVerified        bool       `json:"is_verified"`
	VerificationToken string     `json:"-"`
	AvatarPath        string     `json:"avatar_path,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`

	// Role is populated when the user is loaded with its role joined in.
	Role *Role `json:"role,omitempty"`
}

// RoleName returns the name of the user's role, or "" when no role is loaded.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// IsAdmin reports whether the user's loaded role is the admin role.
func (u *User) IsAdmin() bool {
	return u.RoleName() == RoleAdmin
}

// IsStaff reports whether the user may use staff-level endpoints
// (editor or admin).
func (u *User) IsStaff() bool {
	name := u.RoleName()
	return name == RoleAdmin || name == RoleEditor
}
