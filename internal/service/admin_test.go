package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
	repoMocks "schoolapi/internal/repository/mocks"
)

type adminServiceMocks struct {
	users    *repoMocks.MockUserRepository
	courses  *repoMocks.MockCourseRepository
	profiles *repoMocks.MockStudentProfileRepository
	audit    *repoMocks.MockAuditRepository
	settings *repoMocks.MockSettingRepository
}

func newAdminService() (AdminService, adminServiceMocks) {
	m := adminServiceMocks{
		users:    new(repoMocks.MockUserRepository),
		courses:  new(repoMocks.MockCourseRepository),
		profiles: new(repoMocks.MockStudentProfileRepository),
		audit:    new(repoMocks.MockAuditRepository),
		settings: new(repoMocks.MockSettingRepository),
	}
	svc := NewAdminService(m.users, m.courses, m.profiles, m.audit, m.settings)
	return svc, m
}

func TestAdminService_Dashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("admin sees the counters", func(t *testing.T) {
		svc, m := newAdminService()
		m.users.On("Stats", ctx, mock.AnythingOfType("time.Time")).
			Return(&repository.UserStats{Total: 10, Active: 8, Verified: 6, NewSince: 2}, nil)
		m.courses.On("List", ctx, repository.PageQuery{Limit: 1}).
			Return(&repository.PageResult[model.Course]{Total: 4}, nil)
		m.profiles.On("List", ctx, repository.PageQuery{Limit: 1}).
			Return(&repository.PageResult[model.StudentProfile]{Total: 5}, nil)
		m.audit.On("Recent", ctx, 10).
			Return([]model.AuditLog{{ID: 1, Action: model.AuditCreate, CreatedAt: time.Now()}}, nil)

		got, err := svc.Dashboard(ctx, adminActor())
		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 10, got.TotalUsers)
		assert.Equal(t, 4, got.TotalCourses)
		assert.Equal(t, 5, got.TotalProfiles)
		assert.Len(t, got.RecentActivity, 1)
	})

	t.Run("role on the admin-access list is allowed", func(t *testing.T) {
		svc, m := newAdminService()
		m.settings.On("FindByKind", ctx, model.SettingAdminAccess).
			Return(&model.RoleSetting{Kind: model.SettingAdminAccess, RoleIDs: []int64{2}}, nil)
		m.users.On("Stats", ctx, mock.AnythingOfType("time.Time")).
			Return(&repository.UserStats{}, nil)
		m.courses.On("List", ctx, repository.PageQuery{Limit: 1}).
			Return(&repository.PageResult[model.Course]{}, nil)
		m.profiles.On("List", ctx, repository.PageQuery{Limit: 1}).
			Return(&repository.PageResult[model.StudentProfile]{}, nil)
		m.audit.On("Recent", ctx, 10).Return([]model.AuditLog{}, nil)

		_, err := svc.Dashboard(ctx, editorActor())
		assert.NoError(t, err)
	})

	t.Run("everyone else is refused", func(t *testing.T) {
		svc, m := newAdminService()
		m.settings.On("FindByKind", ctx, model.SettingAdminAccess).
			Return(&model.RoleSetting{Kind: model.SettingAdminAccess, RoleIDs: []int64{}}, nil)

		_, err := svc.Dashboard(ctx, editorActor())
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing setting row is treated as empty", func(t *testing.T) {
		svc, m := newAdminService()
		m.settings.On("FindByKind", ctx, model.SettingAdminAccess).Return(nil, sql.ErrNoRows)

		_, err := svc.Dashboard(ctx, editorActor())
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAdminService_AuditLogs(t *testing.T) {
	ctx := context.Background()

	t.Run("pages through the trail", func(t *testing.T) {
		svc, m := newAdminService()
		m.audit.On("List", ctx, repository.PageQuery{Limit: 20, Offset: 0}).
			Return(&repository.PageResult[model.AuditLog]{Items: []model.AuditLog{{ID: 1}}, Total: 1}, nil)

		got, err := svc.AuditLogs(ctx, adminActor(), 0, -1)
		assert.NoError(t, err)
		assert.Equal(t, 1, got.Total)
	})

	t.Run("access gate applies", func(t *testing.T) {
		svc, m := newAdminService()
		m.settings.On("FindByKind", ctx, model.SettingAdminAccess).
			Return(&model.RoleSetting{RoleIDs: []int64{}}, nil)

		_, err := svc.AuditLogs(ctx, editorActor(), 10, 0)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
