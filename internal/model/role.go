package model

// Built-in role names seeded at initialization. Additional roles can be
// created at runtime; these three back the CLI role selection.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// Role is a named group of users with an attached permission set.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RoleMatrix holds, for one acting role, the actions it may perform on users
// of each target role. Grants is keyed by the target role id in decimal form,
// e.g. {"3": ["read"], "2": ["create", "read", "update"]}.
type RoleMatrix struct {
	ID     int64               `json:"id"`
	RoleID int64               `json:"role_id"`
	Grants map[string][]string `json:"grants"`
}

// Role settings kinds stored in the role_settings table.
const (
	SettingPublicRegistration = "public_registration"
	SettingAdminAccess        = "admin_access"
)

// RoleSetting is a named list of role ids, e.g. the roles open to public
// registration or the non-admin roles granted admin-panel access.
type RoleSetting struct {
	ID      int64   `json:"id"`
	Kind    string  `json:"kind"`
	RoleIDs []int64 `json:"role_ids"`
}

// Contains reports whether the setting includes the given role id.
func (s *RoleSetting) Contains(roleID int64) bool {
	for _, id := range s.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
