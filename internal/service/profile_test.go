package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
	repoMocks "schoolapi/internal/repository/mocks"
)

type profileServiceMocks struct {
	profiles *repoMocks.MockStudentProfileRepository
	perms    *repoMocks.MockPermissionRepository
	audit    *repoMocks.MockAuditRepository
}

func newProfileService() (StudentProfileService, profileServiceMocks) {
	m := profileServiceMocks{
		profiles: new(repoMocks.MockStudentProfileRepository),
		perms:    new(repoMocks.MockPermissionRepository),
		audit:    new(repoMocks.MockAuditRepository),
	}
	svc := NewStudentProfileService(m.profiles, m.perms, m.audit)
	return svc, m
}

func studentActor() *model.User {
	return &model.User{ID: 3, RoleID: 3, Role: &model.Role{ID: 3, Name: model.RoleUser}}
}

func TestStudentProfileService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("user creates their own profile", func(t *testing.T) {
		svc, m := newProfileService()
		actor := studentActor()
		m.profiles.On("FindByUserID", ctx, actor.ID).Return(nil, sql.ErrNoRows)
		m.profiles.On("Create", ctx, mock.MatchedBy(func(p *model.StudentProfile) bool {
			return p.UserID == actor.ID && p.StudentID == "S-100"
		})).Return(&model.StudentProfile{ID: 1, UserID: actor.ID, StudentID: "S-100"}, nil)
		m.audit.On("Create", ctx, mock.Anything).Return(nil)

		got, err := svc.Create(ctx, actor, CreateProfileInput{StudentID: "S-100"})
		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, actor.ID, got.UserID)
	})

	t.Run("profile for someone else requires the permission", func(t *testing.T) {
		svc, m := newProfileService()
		actor := studentActor()
		m.perms.On("ListForRole", ctx, actor.RoleID).Return([]string{}, nil)

		_, err := svc.Create(ctx, actor, CreateProfileInput{UserID: 7, StudentID: "S-200"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("one profile per user", func(t *testing.T) {
		svc, m := newProfileService()
		actor := studentActor()
		m.profiles.On("FindByUserID", ctx, actor.ID).Return(&model.StudentProfile{ID: 1}, nil)

		_, err := svc.Create(ctx, actor, CreateProfileInput{StudentID: "S-100"})
		assert.ErrorIs(t, err, ErrProfileExists)
	})
}

func TestStudentProfileService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("owner reads their profile", func(t *testing.T) {
		svc, m := newProfileService()
		actor := studentActor()
		m.profiles.On("FindByID", ctx, int64(1)).Return(&model.StudentProfile{ID: 1, UserID: actor.ID}, nil)

		got, err := svc.Get(ctx, actor, 1)
		assert.NoError(t, err)
		assert.Equal(t, actor.ID, got.UserID)
	})

	t.Run("stranger without the permission is refused", func(t *testing.T) {
		svc, m := newProfileService()
		actor := studentActor()
		m.profiles.On("FindByID", ctx, int64(1)).Return(&model.StudentProfile{ID: 1, UserID: 7}, nil)
		m.perms.On("ListForRole", ctx, actor.RoleID).Return([]string{}, nil)

		_, err := svc.Get(ctx, actor, 1)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("staff with view permission reads any profile", func(t *testing.T) {
		svc, m := newProfileService()
		actor := editorActor()
		m.profiles.On("FindByID", ctx, int64(1)).Return(&model.StudentProfile{ID: 1, UserID: 7}, nil)
		m.perms.On("ListForRole", ctx, actor.RoleID).Return([]string{"view_profiles"}, nil)

		got, err := svc.Get(ctx, actor, 1)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), got.UserID)
	})
}

func TestStudentProfileService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("listing needs the view permission", func(t *testing.T) {
		svc, m := newProfileService()
		actor := studentActor()
		m.perms.On("ListForRole", ctx, actor.RoleID).Return([]string{"create_profiles"}, nil)

		_, err := svc.List(ctx, actor, 10, 0)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin lists everything", func(t *testing.T) {
		svc, m := newProfileService()
		m.profiles.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.StudentProfile]{Items: []model.StudentProfile{{ID: 1}}, Total: 1}, nil)

		got, err := svc.List(ctx, adminActor(), 0, 0)
		assert.NoError(t, err)
		assert.Equal(t, 1, got.Total)
	})
}

func TestStudentProfileService_Update(t *testing.T) {
	ctx := context.Background()
	dept := "Physics"

	t.Run("owner updates their profile", func(t *testing.T) {
		svc, m := newProfileService()
		actor := studentActor()
		m.profiles.On("FindByID", ctx, int64(1)).Return(&model.StudentProfile{ID: 1, UserID: actor.ID}, nil)
		m.profiles.On("Update", ctx, mock.MatchedBy(func(p *model.StudentProfile) bool {
			return p.Department == dept
		})).Return(&model.StudentProfile{ID: 1, UserID: actor.ID, Department: dept}, nil)
		m.audit.On("Create", ctx, mock.Anything).Return(nil)

		got, err := svc.Update(ctx, actor, 1, UpdateProfileInput{Department: &dept})
		assert.NoError(t, err)
		assert.Equal(t, dept, got.Department)
	})

	t.Run("editor with edit permission updates someone else's profile", func(t *testing.T) {
		svc, m := newProfileService()
		actor := editorActor()
		m.profiles.On("FindByID", ctx, int64(1)).Return(&model.StudentProfile{ID: 1, UserID: 7}, nil)
		m.perms.On("ListForRole", ctx, actor.RoleID).Return([]string{"edit_profiles"}, nil)
		m.profiles.On("Update", ctx, mock.Anything).Return(&model.StudentProfile{ID: 1, UserID: 7, Department: dept}, nil)
		m.audit.On("Create", ctx, mock.Anything).Return(nil)

		got, err := svc.Update(ctx, actor, 1, UpdateProfileInput{Department: &dept})
		assert.NoError(t, err)
		assert.Equal(t, dept, got.Department)
	})

	t.Run("no change skips the audit entry", func(t *testing.T) {
		svc, m := newProfileService()
		actor := studentActor()
		m.profiles.On("FindByID", ctx, int64(1)).Return(&model.StudentProfile{ID: 1, UserID: actor.ID}, nil)
		m.profiles.On("Update", ctx, mock.Anything).Return(&model.StudentProfile{ID: 1, UserID: actor.ID}, nil)

		_, err := svc.Update(ctx, actor, 1, UpdateProfileInput{})
		assert.NoError(t, err)
		m.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestStudentProfileService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner removes their own profile", func(t *testing.T) {
		svc, m := newProfileService()
		actor := studentActor()
		m.profiles.On("FindByID", ctx, int64(42)).Return(&model.StudentProfile{ID: 42, UserID: actor.ID, StudentID: "S-42"}, nil)
		m.profiles.On("Delete", ctx, int64(42)).Return(nil)
		m.audit.On("Create", ctx, mock.Anything).Return(nil)

		assert.NoError(t, svc.Delete(ctx, actor, 42))
		m.perms.AssertNotCalled(t, "ListForRole", mock.Anything, mock.Anything)
	})

	t.Run("stranger without the delete permission is refused", func(t *testing.T) {
		svc, m := newProfileService()
		actor := studentActor()
		m.profiles.On("FindByID", ctx, int64(1)).Return(&model.StudentProfile{ID: 1, UserID: 7}, nil)
		m.perms.On("ListForRole", ctx, actor.RoleID).Return([]string{"edit_profiles"}, nil)

		assert.ErrorIs(t, svc.Delete(ctx, actor, 1), ErrForbidden)
	})

	t.Run("admin removes any profile", func(t *testing.T) {
		svc, m := newProfileService()
		m.profiles.On("FindByID", ctx, int64(1)).Return(&model.StudentProfile{ID: 1, UserID: 7, StudentID: "S-1"}, nil)
		m.profiles.On("Delete", ctx, int64(1)).Return(nil)
		m.audit.On("Create", ctx, mock.Anything).Return(nil)

		assert.NoError(t, svc.Delete(ctx, adminActor(), 1))
	})
}
