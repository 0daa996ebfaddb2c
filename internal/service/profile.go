package service

import (
	"context"
	"database/sql"
	"errors"

	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

// CreateProfileInput is the payload for creating a student profile.
type CreateProfileInput struct {
	UserID      int64
	StudentID   string
	Department  string
	PhoneNumber string
	Address     string
}

// UpdateProfileInput carries the mutable profile fields. Nil pointers leave
// the current value untouched.
type UpdateProfileInput struct {
	Department  *string
	PhoneNumber *string
	Address     *string
}

// ProfileListResult is the service-level DTO for paginated student profiles.
type ProfileListResult struct {
	Items []model.StudentProfile `json:"data"`
	Total int                    `json:"total"`
}

// StudentProfileService defines the student profile use cases. A user manages
// their own profile; staff with the profile permissions manage any.
type StudentProfileService interface {
	Create(ctx context.Context, actor *model.User, in CreateProfileInput) (*model.StudentProfile, error)
	Get(ctx context.Context, actor *model.User, id int64) (*model.StudentProfile, error)
	GetByUser(ctx context.Context, actor *model.User, userID int64) (*model.StudentProfile, error)
	List(ctx context.Context, actor *model.User, limit, offset int) (*ProfileListResult, error)
	Update(ctx context.Context, actor *model.User, id int64, in UpdateProfileInput) (*model.StudentProfile, error)
	Delete(ctx context.Context, actor *model.User, id int64) error
}

type studentProfileService struct {
	profiles repository.StudentProfileRepository
	perms    repository.PermissionRepository
	audit    recorder
}

// NewStudentProfileService constructs a StudentProfileService.
func NewStudentProfileService(
	profiles repository.StudentProfileRepository,
	perms repository.PermissionRepository,
	auditRepo repository.AuditRepository,
) StudentProfileService {
	return &studentProfileService{profiles: profiles, perms: perms, audit: recorder{repo: auditRepo}}
}

// allowOwnerOr passes when the actor owns the profile, otherwise requires the
// named permission.
func (s *studentProfileService) allowOwnerOr(ctx context.Context, actor *model.User, ownerID int64, perm string) error {
	if actor.ID == ownerID {
		return nil
	}
	return requirePermission(ctx, s.perms, actor, perm)
}

func (s *studentProfileService) Create(ctx context.Context, actor *model.User, in CreateProfileInput) (*model.StudentProfile, error) {
	if in.UserID == 0 {
		in.UserID = actor.ID
	}
	if err := s.allowOwnerOr(ctx, actor, in.UserID, "create_profiles"); err != nil {
		return nil, err
	}
	if _, err := s.profiles.FindByUserID(ctx, in.UserID); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	profile := &model.StudentProfile{
		UserID:      in.UserID,
		StudentID:   in.StudentID,
		Department:  in.Department,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
	}
	stored, err := s.profiles.Create(ctx, profile)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, model.AuditCreate, "student_profile", stored.ID, map[string]any{
		"user_id": stored.UserID, "student_id": stored.StudentID,
	})
	return stored, nil
}

func (s *studentProfileService) Get(ctx context.Context, actor *model.User, id int64) (*model.StudentProfile, error) {
	profile, err := s.findProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.allowOwnerOr(ctx, actor, profile.UserID, "view_profiles"); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *studentProfileService) GetByUser(ctx context.Context, actor *model.User, userID int64) (*model.StudentProfile, error) {
	if userID == 0 {
		return nil, ErrIDRequired
	}
	if err := s.allowOwnerOr(ctx, actor, userID, "view_profiles"); err != nil {
		return nil, err
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *studentProfileService) List(ctx context.Context, actor *model.User, limit, offset int) (*ProfileListResult, error) {
	if err := requirePermission(ctx, s.perms, actor, "view_profiles"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.profiles.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ProfileListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *studentProfileService) Update(ctx context.Context, actor *model.User, id int64, in UpdateProfileInput) (*model.StudentProfile, error) {
	profile, err := s.findProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.allowOwnerOr(ctx, actor, profile.UserID, "edit_profiles"); err != nil {
		return nil, err
	}
	changes := map[string]any{}
	if in.Department != nil {
		profile.Department = *in.Department
		changes["department"] = *in.Department
	}
	if in.PhoneNumber != nil {
		profile.PhoneNumber = *in.PhoneNumber
		changes["phone_number"] = *in.PhoneNumber
	}
	if in.Address != nil {
		profile.Address = *in.Address
		changes["address"] = *in.Address
	}
	updated, err := s.profiles.Update(ctx, profile)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.audit.record(ctx, actor, model.AuditUpdate, "student_profile", updated.ID, changes)
	}
	return updated, nil
}

func (s *studentProfileService) Delete(ctx context.Context, actor *model.User, id int64) error {
	profile, err := s.findProfile(ctx, id)
	if err != nil {
		return err
	}
	if err := s.allowOwnerOr(ctx, actor, profile.UserID, "delete_profiles"); err != nil {
		return err
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.record(ctx, actor, model.AuditDelete, "student_profile", id, map[string]any{
		"user_id": profile.UserID, "student_id": profile.StudentID,
	})
	return nil
}

func (s *studentProfileService) findProfile(ctx context.Context, id int64) (*model.StudentProfile, error) {
	if id == 0 {
		return nil, ErrIDRequired
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}
