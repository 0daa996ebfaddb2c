package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"schoolapi/internal/model"
	repoMocks "schoolapi/internal/repository/mocks"
)

type rbacServiceMocks struct {
	roles    *repoMocks.MockRoleRepository
	matrix   *repoMocks.MockMatrixRepository
	settings *repoMocks.MockSettingRepository
	perms    *repoMocks.MockPermissionRepository
	audit    *repoMocks.MockAuditRepository
}

func newRbacService() (RbacService, rbacServiceMocks) {
	m := rbacServiceMocks{
		roles:    new(repoMocks.MockRoleRepository),
		matrix:   new(repoMocks.MockMatrixRepository),
		settings: new(repoMocks.MockSettingRepository),
		perms:    new(repoMocks.MockPermissionRepository),
		audit:    new(repoMocks.MockAuditRepository),
	}
	svc := NewRbacService(m.roles, m.matrix, m.settings, m.perms, m.audit)
	return svc, m
}

func TestRbacService_AccessGate(t *testing.T) {
	ctx := context.Background()

	t.Run("manage_roles permission suffices", func(t *testing.T) {
		svc, m := newRbacService()
		actor := editorActor()
		m.perms.On("ListForRole", ctx, actor.RoleID).Return([]string{"manage_roles"}, nil)
		m.roles.On("List", ctx).Return([]model.Role{{ID: 1, Name: "admin"}}, nil)

		got, err := svc.ListRoles(ctx, actor)
		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("without the permission everything is forbidden", func(t *testing.T) {
		svc, m := newRbacService()
		actor := editorActor()
		m.perms.On("ListForRole", ctx, actor.RoleID).Return([]string{"view_users"}, nil)

		_, err := svc.ListRoles(ctx, actor)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestRbacService_CreateRole(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the role with an empty matrix row", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByName", ctx, "assistant").Return(nil, sql.ErrNoRows)
		m.roles.On("Create", ctx, mock.MatchedBy(func(r *model.Role) bool {
			return r.Name == "assistant"
		})).Return(&model.Role{ID: 4, Name: "assistant"}, nil)
		m.matrix.On("Upsert", ctx, mock.MatchedBy(func(rm *model.RoleMatrix) bool {
			return rm.RoleID == 4 && len(rm.Grants) == 0
		})).Return(&model.RoleMatrix{RoleID: 4}, nil)
		m.audit.On("Create", ctx, mock.Anything).Return(nil)

		got, err := svc.CreateRole(ctx, adminActor(), "assistant", "helps out")
		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(4), got.ID)
		m.matrix.AssertExpectations(t)
	})

	t.Run("duplicate name", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByName", ctx, "editor").Return(&model.Role{ID: 2, Name: "editor"}, nil)

		_, err := svc.CreateRole(ctx, adminActor(), "editor", "")
		assert.ErrorIs(t, err, ErrRoleNameTaken)
	})
}

func TestRbacService_DeleteRole(t *testing.T) {
	ctx := context.Background()

	t.Run("built-in roles are protected", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByID", ctx, int64(3)).Return(&model.Role{ID: 3, Name: model.RoleUser}, nil)

		assert.ErrorIs(t, svc.DeleteRole(ctx, adminActor(), 3), ErrRoleProtected)
	})

	t.Run("roles still assigned to users are kept", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByID", ctx, int64(4)).Return(&model.Role{ID: 4, Name: "assistant"}, nil)
		m.roles.On("CountUsers", ctx, int64(4)).Return(2, nil)

		assert.ErrorIs(t, svc.DeleteRole(ctx, adminActor(), 4), ErrRoleInUse)
	})

	t.Run("unused custom role is removed", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByID", ctx, int64(4)).Return(&model.Role{ID: 4, Name: "assistant"}, nil)
		m.roles.On("CountUsers", ctx, int64(4)).Return(0, nil)
		m.roles.On("Delete", ctx, int64(4)).Return(nil)
		m.audit.On("Create", ctx, mock.Anything).Return(nil)

		assert.NoError(t, svc.DeleteRole(ctx, adminActor(), 4))
	})
}

func TestRbacService_UpdateMatrix(t *testing.T) {
	ctx := context.Background()

	t.Run("valid grants are stored", func(t *testing.T) {
		svc, m := newRbacService()
		grants := map[string][]string{"3": {"read", "update"}}
		m.roles.On("FindByID", ctx, int64(2)).Return(&model.Role{ID: 2, Name: "editor"}, nil)
		m.roles.On("FindByID", ctx, int64(3)).Return(&model.Role{ID: 3, Name: "user"}, nil)
		m.matrix.On("Upsert", ctx, mock.MatchedBy(func(rm *model.RoleMatrix) bool {
			return rm.RoleID == 2
		})).Return(&model.RoleMatrix{RoleID: 2, Grants: grants}, nil)
		m.audit.On("Create", ctx, mock.Anything).Return(nil)

		got, err := svc.UpdateMatrix(ctx, adminActor(), 2, grants)
		assert.NoError(t, err)
		assert.Equal(t, grants, got.Grants)
	})

	t.Run("unknown action is rejected", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByID", ctx, int64(2)).Return(&model.Role{ID: 2}, nil)
		m.roles.On("FindByID", ctx, int64(3)).Return(&model.Role{ID: 3}, nil)

		_, err := svc.UpdateMatrix(ctx, adminActor(), 2, map[string][]string{"3": {"fly"}})
		assert.ErrorContains(t, err, "invalid permission")
	})

	t.Run("malformed target key is rejected", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByID", ctx, int64(2)).Return(&model.Role{ID: 2}, nil)

		_, err := svc.UpdateMatrix(ctx, adminActor(), 2, map[string][]string{"teacher": {"read"}})
		assert.ErrorContains(t, err, "invalid target role id")
	})

	t.Run("unknown target role is rejected", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByID", ctx, int64(2)).Return(&model.Role{ID: 2}, nil)
		m.roles.On("FindByID", ctx, int64(42)).Return(nil, sql.ErrNoRows)

		_, err := svc.UpdateMatrix(ctx, adminActor(), 2, map[string][]string{"42": {"read"}})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRbacService_DeleteMatrixEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the target entry", func(t *testing.T) {
		svc, m := newRbacService()
		m.matrix.On("FindByRoleID", ctx, int64(2)).
			Return(&model.RoleMatrix{RoleID: 2, Grants: map[string][]string{"3": {"read"}, "4": {"read"}}}, nil)
		m.matrix.On("Upsert", ctx, mock.MatchedBy(func(rm *model.RoleMatrix) bool {
			_, gone := rm.Grants["3"]
			return rm.RoleID == 2 && !gone && len(rm.Grants) == 1
		})).Return(&model.RoleMatrix{RoleID: 2, Grants: map[string][]string{"4": {"read"}}}, nil)
		m.audit.On("Create", ctx, mock.Anything).Return(nil)

		got, err := svc.DeleteMatrixEntry(ctx, adminActor(), 2, 3)
		assert.NoError(t, err)
		assert.NotContains(t, got.Grants, "3")
	})

	t.Run("absent entry", func(t *testing.T) {
		svc, m := newRbacService()
		m.matrix.On("FindByRoleID", ctx, int64(2)).
			Return(&model.RoleMatrix{RoleID: 2, Grants: map[string][]string{}}, nil)

		_, err := svc.DeleteMatrixEntry(ctx, adminActor(), 2, 3)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing matrix row", func(t *testing.T) {
		svc, m := newRbacService()
		m.matrix.On("FindByRoleID", ctx, int64(2)).Return(nil, sql.ErrNoRows)

		_, err := svc.DeleteMatrixEntry(ctx, adminActor(), 2, 3)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRbacService_Settings(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown kind", func(t *testing.T) {
		svc, _ := newRbacService()
		_, err := svc.GetSetting(ctx, adminActor(), "favorite_color")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update validates every role id", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByID", ctx, int64(3)).Return(&model.Role{ID: 3}, nil)
		m.settings.On("Upsert", ctx, mock.MatchedBy(func(s *model.RoleSetting) bool {
			return s.Kind == model.SettingPublicRegistration && len(s.RoleIDs) == 1
		})).Return(&model.RoleSetting{ID: 1, Kind: model.SettingPublicRegistration, RoleIDs: []int64{3}}, nil)
		m.audit.On("Create", ctx, mock.Anything).Return(nil)

		got, err := svc.UpdateSetting(ctx, adminActor(), model.SettingPublicRegistration, []int64{3})
		assert.NoError(t, err)
		assert.Equal(t, []int64{3}, got.RoleIDs)
	})

	t.Run("update with unknown role id fails", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByID", ctx, int64(42)).Return(nil, sql.ErrNoRows)

		_, err := svc.UpdateSetting(ctx, adminActor(), model.SettingAdminAccess, []int64{42})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRbacService_UpdateRole(t *testing.T) {
	ctx := context.Background()

	t.Run("renaming a built-in role is refused", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByID", ctx, int64(1)).Return(&model.Role{ID: 1, Name: model.RoleAdmin}, nil)

		_, err := svc.UpdateRole(ctx, adminActor(), 1, "superadmin", "")
		assert.ErrorIs(t, err, ErrRoleProtected)
	})

	t.Run("description of a built-in role may change", func(t *testing.T) {
		svc, m := newRbacService()
		m.roles.On("FindByID", ctx, int64(1)).Return(&model.Role{ID: 1, Name: model.RoleAdmin}, nil)
		m.roles.On("Update", ctx, mock.MatchedBy(func(r *model.Role) bool {
			return r.Name == model.RoleAdmin && r.Description == "full access"
		})).Return(&model.Role{ID: 1, Name: model.RoleAdmin, Description: "full access"}, nil)
		m.audit.On("Create", ctx, mock.Anything).Return(nil)

		got, err := svc.UpdateRole(ctx, adminActor(), 1, model.RoleAdmin, "full access")
		assert.NoError(t, err)
		assert.Equal(t, "full access", got.Description)
	})
}
