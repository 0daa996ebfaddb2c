package service

import (
	"context"
	"database/sql"
	"errors"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

// CreateCourseInput is the payload for creating a course.
type CreateCourseInput struct {
	Code        string
	Title       string
	Description string
	Credits     float64
	TeacherID   int64
}

// UpdateCourseInput carries the mutable course fields. Nil pointers leave the
// current value untouched.
type UpdateCourseInput struct {
	Title       *string
	Description *string
	Credits     *float64
	TeacherID   *int64
}

// CourseListResult is the service-level DTO for paginated courses.
type CourseListResult struct {
	Items []model.Course `json:"data"`
	Total int            `json:"total"`
}

// CourseService defines the course catalog use cases, guarded by the named
// course permissions of the actor's role.
type CourseService interface {
	Create(ctx context.Context, actor *model.User, in CreateCourseInput) (*model.Course, error)
	Get(ctx context.Context, actor *model.User, id int64) (*model.Course, error)
	List(ctx context.Context, actor *model.User, limit, offset int) (*CourseListResult, error)
	Update(ctx context.Context, actor *model.User, id int64, in UpdateCourseInput) (*model.Course, error)
	Delete(ctx context.Context, actor *model.User, id int64) error
}

type courseService struct {
	courses repository.CourseRepository
	perms   repository.PermissionRepository
	audit   recorder
}

// NewCourseService constructs a CourseService.
func NewCourseService(
	courses repository.CourseRepository,
	perms repository.PermissionRepository,
	auditRepo repository.AuditRepository,
) CourseService {
	return &courseService{courses: courses, perms: perms, audit: recorder{repo: auditRepo}}
}

// requirePermission checks the actor role's named permissions; admins bypass.
func requirePermission(ctx context.Context, perms repository.PermissionRepository, actor *model.User, name string) error {
	if actor.IsAdmin() {
		return nil
	}
	names, err := perms.ListForRole(ctx, actor.RoleID)
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	return ErrForbidden
}

func (s *courseService) Create(ctx context.Context, actor *model.User, in CreateCourseInput) (*model.Course, error) {
	if err := requirePermission(ctx, s.perms, actor, "create_courses"); err != nil {
		return nil, err
	}
	if _, err := s.courses.FindByCode(ctx, in.Code); err == nil {
		return nil, ErrCourseCodeTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	course := &model.Course{
		Code:        in.Code,
		Title:       in.Title,
		Description: in.Description,
		Credits:     in.Credits,
		TeacherID:   in.TeacherID,
	}
	stored, err := s.courses.Create(ctx, course)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, model.AuditCreate, "course", stored.ID, map[string]any{
		"code": stored.Code, "title": stored.Title,
	})
	return stored, nil
}

func (s *courseService) Get(ctx context.Context, actor *model.User, id int64) (*model.Course, error) {
	if err := requirePermission(ctx, s.perms, actor, "view_courses"); err != nil {
		return nil, err
	}
	return s.findCourse(ctx, id)
}

func (s *courseService) List(ctx context.Context, actor *model.User, limit, offset int) (*CourseListResult, error) {
	if err := requirePermission(ctx, s.perms, actor, "view_courses"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.courses.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &CourseListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *courseService) Update(ctx context.Context, actor *model.User, id int64, in UpdateCourseInput) (*model.Course, error) {
	if err := requirePermission(ctx, s.perms, actor, "edit_courses"); err != nil {
		return nil, err
	}
	course, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]any{}
	if in.Title != nil {
		course.Title = *in.Title
		changes["title"] = *in.Title
	}
	if in.Description != nil {
		course.Description = *in.Description
		changes["description"] = *in.Description
	}
	if in.Credits != nil {
		course.Credits = *in.Credits
		changes["credits"] = *in.Credits
	}
	if in.TeacherID != nil {
		course.TeacherID = *in.TeacherID
		changes["teacher_id"] = *in.TeacherID
	}
	updated, err := s.courses.Update(ctx, course)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.audit.record(ctx, actor, model.AuditUpdate, "course", updated.ID, changes)
	}
	return updated, nil
}

func (s *courseService) Delete(ctx context.Context, actor *model.User, id int64) error {
	if err := requirePermission(ctx, s.perms, actor, "delete_courses"); err != nil {
		return err
	}
	course, err := s.findCourse(ctx, id)
	if err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.record(ctx, actor, model.AuditDelete, "course", id, map[string]any{"code": course.Code})
	return nil
}

func (s *courseService) findCourse(ctx context.Context, id int64) (*model.Course, error) {
	if id == 0 {
		return nil, ErrIDRequired
	}
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return course, nil
}
