package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"schoolapi/internal/model"
	"schoolapi/internal/rbac"
	"schoolapi/internal/repository"
)

// RbacService defines the role, grant-matrix, role-setting and permission
// catalog management use cases. All mutations require the admin role or the
// manage_roles permission.
type RbacService interface {
	CreateRole(ctx context.Context, actor *model.User, name, description string) (*model.Role, error)
	GetRole(ctx context.Context, actor *model.User, id int64) (*model.Role, error)
	ListRoles(ctx context.Context, actor *model.User) ([]model.Role, error)
	UpdateRole(ctx context.Context, actor *model.User, id int64, name, description string) (*model.Role, error)

	// DeleteRole refuses to remove built-in roles and roles still assigned to users.
	DeleteRole(ctx context.Context, actor *model.User, id int64) error

	GetMatrix(ctx context.Context, actor *model.User, roleID int64) (*model.RoleMatrix, error)
	ListMatrix(ctx context.Context, actor *model.User) ([]model.RoleMatrix, error)

	// UpdateMatrix replaces the grants of a role after validating every target
	// role id and action.
	UpdateMatrix(ctx context.Context, actor *model.User, roleID int64, grants map[string][]string) (*model.RoleMatrix, error)

	// DeleteMatrixEntry removes one target-role entry from a role's grants.
	DeleteMatrixEntry(ctx context.Context, actor *model.User, roleID, targetRoleID int64) (*model.RoleMatrix, error)

	GetSetting(ctx context.Context, actor *model.User, kind string) (*model.RoleSetting, error)
	UpdateSetting(ctx context.Context, actor *model.User, kind string, roleIDs []int64) (*model.RoleSetting, error)

	ListPermissions(ctx context.Context, actor *model.User) ([]model.Permission, error)
	RolePermissions(ctx context.Context, actor *model.User, roleID int64) ([]string, error)
}

type rbacService struct {
	roles    repository.RoleRepository
	matrix   repository.MatrixRepository
	settings repository.SettingRepository
	perms    repository.PermissionRepository
	audit    recorder
}

// NewRbacService constructs an RbacService.
func NewRbacService(
	roles repository.RoleRepository,
	matrix repository.MatrixRepository,
	settings repository.SettingRepository,
	perms repository.PermissionRepository,
	auditRepo repository.AuditRepository,
) RbacService {
	return &rbacService{
		roles:    roles,
		matrix:   matrix,
		settings: settings,
		perms:    perms,
		audit:    recorder{repo: auditRepo},
	}
}

// canManage gates every RbacService operation.
func (s *rbacService) canManage(ctx context.Context, actor *model.User) error {
	if actor.IsAdmin() {
		return nil
	}
	names, err := s.perms.ListForRole(ctx, actor.RoleID)
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == "manage_roles" {
			return nil
		}
	}
	return ErrForbidden
}

func (s *rbacService) CreateRole(ctx context.Context, actor *model.User, name, description string) (*model.Role, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	if _, err := s.roles.FindByName(ctx, name); err == nil {
		return nil, ErrRoleNameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	role, err := s.roles.Create(ctx, &model.Role{Name: name, Description: description})
	if err != nil {
		return nil, err
	}
	// New roles start with an empty grant matrix.
	if _, err := s.matrix.Upsert(ctx, &model.RoleMatrix{RoleID: role.ID, Grants: map[string][]string{}}); err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, model.AuditCreate, "role", role.ID, map[string]any{"name": role.Name})
	return role, nil
}

func (s *rbacService) GetRole(ctx context.Context, actor *model.User, id int64) (*model.Role, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	return s.findRole(ctx, id)
}

func (s *rbacService) ListRoles(ctx context.Context, actor *model.User) ([]model.Role, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	return s.roles.List(ctx)
}

func (s *rbacService) UpdateRole(ctx context.Context, actor *model.User, id int64, name, description string) (*model.Role, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	role, err := s.findRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if isBuiltinRole(role.Name) && name != role.Name {
		return nil, ErrRoleProtected
	}
	if name != role.Name {
		if _, err := s.roles.FindByName(ctx, name); err == nil {
			return nil, ErrRoleNameTaken
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	role.Name = name
	role.Description = description
	updated, err := s.roles.Update(ctx, role)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, model.AuditUpdate, "role", updated.ID, map[string]any{
		"name": updated.Name, "description": updated.Description,
	})
	return updated, nil
}

func (s *rbacService) DeleteRole(ctx context.Context, actor *model.User, id int64) error {
	if err := s.canManage(ctx, actor); err != nil {
		return err
	}
	role, err := s.findRole(ctx, id)
	if err != nil {
		return err
	}
	if isBuiltinRole(role.Name) {
		return ErrRoleProtected
	}
	n, err := s.roles.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrRoleInUse
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.record(ctx, actor, model.AuditDelete, "role", id, map[string]any{"name": role.Name})
	return nil
}

func (s *rbacService) GetMatrix(ctx context.Context, actor *model.User, roleID int64) (*model.RoleMatrix, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	if _, err := s.findRole(ctx, roleID); err != nil {
		return nil, err
	}
	m, err := s.matrix.FindByRoleID(ctx, roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &model.RoleMatrix{RoleID: roleID, Grants: map[string][]string{}}, nil
		}
		return nil, err
	}
	return m, nil
}

func (s *rbacService) ListMatrix(ctx context.Context, actor *model.User) ([]model.RoleMatrix, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	return s.matrix.List(ctx)
}

func (s *rbacService) UpdateMatrix(ctx context.Context, actor *model.User, roleID int64, grants map[string][]string) (*model.RoleMatrix, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	if _, err := s.findRole(ctx, roleID); err != nil {
		return nil, err
	}
	if grants == nil {
		grants = map[string][]string{}
	}
	for key, actions := range grants {
		targetID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: target role id %q", ErrInvalidGrant, key)
		}
		if _, err := s.findRole(ctx, targetID); err != nil {
			return nil, err
		}
		if err := rbac.ValidateActions(actions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGrant, err)
		}
	}
	updated, err := s.matrix.Upsert(ctx, &model.RoleMatrix{RoleID: roleID, Grants: grants})
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, model.AuditUpdate, "role_matrix", roleID, map[string]any{"grants": grants})
	return updated, nil
}

func (s *rbacService) DeleteMatrixEntry(ctx context.Context, actor *model.User, roleID, targetRoleID int64) (*model.RoleMatrix, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	row, err := s.matrix.FindByRoleID(ctx, roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	key := strconv.FormatInt(targetRoleID, 10)
	if _, ok := row.Grants[key]; !ok {
		return nil, ErrNotFound
	}
	delete(row.Grants, key)
	updated, err := s.matrix.Upsert(ctx, row)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, model.AuditDelete, "role_matrix", roleID, map[string]any{"target_role_id": targetRoleID})
	return updated, nil
}

func (s *rbacService) GetSetting(ctx context.Context, actor *model.User, kind string) (*model.RoleSetting, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	if !isSettingKind(kind) {
		return nil, ErrNotFound
	}
	setting, err := s.settings.FindByKind(ctx, kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return setting, nil
}

func (s *rbacService) UpdateSetting(ctx context.Context, actor *model.User, kind string, roleIDs []int64) (*model.RoleSetting, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	if !isSettingKind(kind) {
		return nil, ErrNotFound
	}
	if roleIDs == nil {
		roleIDs = []int64{}
	}
	for _, id := range roleIDs {
		if _, err := s.findRole(ctx, id); err != nil {
			return nil, err
		}
	}
	updated, err := s.settings.Upsert(ctx, &model.RoleSetting{Kind: kind, RoleIDs: roleIDs})
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, model.AuditUpdate, "role_setting", updated.ID, map[string]any{
		"kind": kind, "role_ids": roleIDs,
	})
	return updated, nil
}

func (s *rbacService) ListPermissions(ctx context.Context, actor *model.User) ([]model.Permission, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	return s.perms.List(ctx)
}

func (s *rbacService) RolePermissions(ctx context.Context, actor *model.User, roleID int64) ([]string, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	if _, err := s.findRole(ctx, roleID); err != nil {
		return nil, err
	}
	return s.perms.ListForRole(ctx, roleID)
}

func (s *rbacService) findRole(ctx context.Context, id int64) (*model.Role, error) {
	if id == 0 {
		return nil, ErrIDRequired
	}
	role, err := s.roles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

func isBuiltinRole(name string) bool {
	return name == model.RoleAdmin || name == model.RoleEditor || name == model.RoleUser
}

func isSettingKind(kind string) bool {
	return kind == model.SettingPublicRegistration || kind == model.SettingAdminAccess
}
