package rbac

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

// CatalogEntry describes one named permission in the seeded catalog.
type CatalogEntry struct {
	Name        string
	Description string
}

// DefaultCatalog is the named permission catalog created at initialization.
var DefaultCatalog = []CatalogEntry{
	{"view_users", "Can view user list"},
	{"create_users", "Can create users"},
	{"edit_users", "Can edit users"},
	{"delete_users", "Can delete users"},
	{"view_courses", "Can view course list"},
	{"create_courses", "Can create courses"},
	{"edit_courses", "Can edit courses"},
	{"delete_courses", "Can delete courses"},
	{"view_profiles", "Can view student profiles"},
	{"create_profiles", "Can create student profiles"},
	{"edit_profiles", "Can edit student profiles"},
	{"delete_profiles", "Can delete student profiles"},
	{"manage_roles", "Can manage roles and permissions"},
}

// DefaultRoles maps seeded role names to their description and assigned
// catalog permissions. The admin role holds the full catalog.
var DefaultRoles = map[string]struct {
	Description string
	Permissions []string
}{
	model.RoleAdmin: {
		Description: "Administrator with full access",
		Permissions: catalogNames(),
	},
	model.RoleEditor: {
		Description: "Staff member with limited access",
		Permissions: []string{
			"view_users",
			"view_courses",
			"create_courses",
			"edit_courses",
			"view_profiles",
			"edit_profiles",
			"delete_profiles",
		},
	},
	model.RoleUser: {
		Description: "Regular user",
		Permissions: []string{
			"view_courses",
			"create_profiles",
			"edit_profiles",
		},
	},
}

func catalogNames() []string {
	names := make([]string, len(DefaultCatalog))
	for i, e := range DefaultCatalog {
		names[i] = e.Name
	}
	return names
}

// Seeder creates the default roles, permission catalog, matrix rows and role
// settings. All operations are idempotent.
type Seeder struct {
	roles    repository.RoleRepository
	perms    repository.PermissionRepository
	matrix   repository.MatrixRepository
	settings repository.SettingRepository
}

// NewSeeder constructs a Seeder over the given repositories.
func NewSeeder(
	roles repository.RoleRepository,
	perms repository.PermissionRepository,
	matrix repository.MatrixRepository,
	settings repository.SettingRepository,
) *Seeder {
	return &Seeder{roles: roles, perms: perms, matrix: matrix, settings: settings}
}

// EnsureSeeded creates any missing defaults and returns the seeded roles by name.
func (s *Seeder) EnsureSeeded(ctx context.Context) (map[string]*model.Role, error) {
	permIDs := make(map[string]int64, len(DefaultCatalog))
	for _, entry := range DefaultCatalog {
		p, err := s.perms.Create(ctx, &model.Permission{Name: entry.Name, Description: entry.Description})
		if err != nil {
			return nil, fmt.Errorf("seed permission %s: %w", entry.Name, err)
		}
		permIDs[p.Name] = p.ID
	}

	roles := make(map[string]*model.Role, len(DefaultRoles))
	for name, spec := range DefaultRoles {
		role, err := s.roles.FindByName(ctx, name)
		if errors.Is(err, sql.ErrNoRows) {
			role, err = s.roles.Create(ctx, &model.Role{Name: name, Description: spec.Description})
		}
		if err != nil {
			return nil, fmt.Errorf("seed role %s: %w", name, err)
		}
		roles[name] = role

		for _, permName := range spec.Permissions {
			if err := s.perms.AssignToRole(ctx, role.ID, permIDs[permName]); err != nil {
				return nil, fmt.Errorf("assign %s to %s: %w", permName, name, err)
			}
		}

		if _, err := s.matrix.FindByRoleID(ctx, role.ID); errors.Is(err, sql.ErrNoRows) {
			if _, err := s.matrix.Upsert(ctx, &model.RoleMatrix{RoleID: role.ID, Grants: map[string][]string{}}); err != nil {
				return nil, fmt.Errorf("seed matrix for %s: %w", name, err)
			}
		} else if err != nil {
			return nil, err
		}
	}

	// Public registration defaults to the regular user role; the admin-access
	// allowlist starts empty.
	if _, err := s.settings.FindByKind(ctx, model.SettingPublicRegistration); errors.Is(err, sql.ErrNoRows) {
		setting := &model.RoleSetting{Kind: model.SettingPublicRegistration, RoleIDs: []int64{roles[model.RoleUser].ID}}
		if _, err := s.settings.Upsert(ctx, setting); err != nil {
			return nil, fmt.Errorf("seed public registration roles: %w", err)
		}
	} else if err != nil {
		return nil, err
	}
	if _, err := s.settings.FindByKind(ctx, model.SettingAdminAccess); errors.Is(err, sql.ErrNoRows) {
		setting := &model.RoleSetting{Kind: model.SettingAdminAccess, RoleIDs: []int64{}}
		if _, err := s.settings.Upsert(ctx, setting); err != nil {
			return nil, fmt.Errorf("seed admin access roles: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	return roles, nil
}
