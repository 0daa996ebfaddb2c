package repository

import (
	"context"

	"schoolapi/internal/model"
)

// RoleRepository defines data access for roles.
type RoleRepository interface {
	Create(ctx context.Context, r *model.Role) (*model.Role, error)
	FindByID(ctx context.Context, id int64) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	Update(ctx context.Context, r *model.Role) (*model.Role, error)
	Delete(ctx context.Context, id int64) error

	// CountUsers returns how many users are assigned the role. Used to block
	// deletion of roles still in use.
	CountUsers(ctx context.Context, roleID int64) (int, error)
}

// MatrixRepository defines data access for per-role permission matrix rows.
type MatrixRepository interface {
	FindByRoleID(ctx context.Context, roleID int64) (*model.RoleMatrix, error)
	List(ctx context.Context) ([]model.RoleMatrix, error)

	// Upsert inserts or replaces the grants for the given role.
	Upsert(ctx context.Context, m *model.RoleMatrix) (*model.RoleMatrix, error)
}

// SettingRepository defines data access for role settings
// (public registration roles, admin access roles).
type SettingRepository interface {
	FindByKind(ctx context.Context, kind string) (*model.RoleSetting, error)
	Upsert(ctx context.Context, s *model.RoleSetting) (*model.RoleSetting, error)
}

// PermissionRepository defines data access for the named permission catalog.
type PermissionRepository interface {
	Create(ctx context.Context, p *model.Permission) (*model.Permission, error)
	FindByName(ctx context.Context, name string) (*model.Permission, error)
	List(ctx context.Context) ([]model.Permission, error)

	// ListForRole returns the permission names assigned to a role.
	ListForRole(ctx context.Context, roleID int64) ([]string, error)

	// AssignToRole links a permission to a role; assigning twice is a no-op.
	AssignToRole(ctx context.Context, roleID, permissionID int64) error
}
