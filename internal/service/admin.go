package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

// Dashboard aggregates the admin landing page counters.
type Dashboard struct {
	TotalUsers     int              `json:"total_users"`
	ActiveUsers    int              `json:"active_users"`
	VerifiedUsers  int              `json:"verified_users"`
	NewUsersPast7d int              `json:"new_users_past_7d"`
	TotalCourses   int              `json:"total_courses"`
	TotalProfiles  int              `json:"total_profiles"`
	RecentActivity []model.AuditLog `json:"recent_activity"`
}

// AuditListResult is the service-level DTO for paginated audit entries.
type AuditListResult struct {
	Items []model.AuditLog `json:"data"`
	Total int              `json:"total"`
}

// AdminService defines the admin panel use cases: the dashboard summary and
// the audit trail. Access requires the admin role or membership in the
// admin-access role setting.
type AdminService interface {
	Dashboard(ctx context.Context, actor *model.User) (*Dashboard, error)
	AuditLogs(ctx context.Context, actor *model.User, limit, offset int) (*AuditListResult, error)
}

type adminService struct {
	users    repository.UserRepository
	courses  repository.CourseRepository
	profiles repository.StudentProfileRepository
	auditLog repository.AuditRepository
	settings repository.SettingRepository
}

// NewAdminService constructs an AdminService.
func NewAdminService(
	users repository.UserRepository,
	courses repository.CourseRepository,
	profiles repository.StudentProfileRepository,
	auditLog repository.AuditRepository,
	settings repository.SettingRepository,
) AdminService {
	return &adminService{
		users:    users,
		courses:  courses,
		profiles: profiles,
		auditLog: auditLog,
		settings: settings,
	}
}

// requireAdminAccess gates the admin panel endpoints.
func (s *adminService) requireAdminAccess(ctx context.Context, actor *model.User) error {
	if actor.IsAdmin() {
		return nil
	}
	setting, err := s.settings.FindByKind(ctx, model.SettingAdminAccess)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrForbidden
		}
		return err
	}
	if !setting.Contains(actor.RoleID) {
		return ErrForbidden
	}
	return nil
}

func (s *adminService) Dashboard(ctx context.Context, actor *model.User) (*Dashboard, error) {
	if err := s.requireAdminAccess(ctx, actor); err != nil {
		return nil, err
	}
	stats, err := s.users.Stats(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	// Count-only queries reuse the paginated list with the smallest page.
	coursePage, err := s.courses.List(ctx, repository.PageQuery{Limit: 1})
	if err != nil {
		return nil, err
	}
	profilePage, err := s.profiles.List(ctx, repository.PageQuery{Limit: 1})
	if err != nil {
		return nil, err
	}
	recent, err := s.auditLog.Recent(ctx, 10)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		TotalUsers:     stats.Total,
		ActiveUsers:    stats.Active,
		VerifiedUsers:  stats.Verified,
		NewUsersPast7d: stats.NewSince,
		TotalCourses:   coursePage.Total,
		TotalProfiles:  profilePage.Total,
		RecentActivity: recent,
	}, nil
}

func (s *adminService) AuditLogs(ctx context.Context, actor *model.User, limit, offset int) (*AuditListResult, error) {
	if err := s.requireAdminAccess(ctx, actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.auditLog.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &AuditListResult{Items: res.Items, Total: res.Total}, nil
}
