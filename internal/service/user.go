package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"schoolapi/internal/auth"
	"schoolapi/internal/model"
	"schoolapi/internal/rbac"
	"schoolapi/internal/repository"
	"schoolapi/internal/storage"
)

// CreateUserInput is the payload for an administrative user creation.
type CreateUserInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	RoleID    int64
	IsActive  *bool
}

// UpdateUserInput carries the mutable user fields. Nil pointers leave the
// current value untouched.
type UpdateUserInput struct {
	Email     *string
	Username  *string
	Password  *string
	FirstName *string
	LastName  *string
	RoleID    *int64
	IsActive  *bool
}

// UserListResult is the service-level DTO for paginated users.
type UserListResult struct {
	Items []model.User `json:"data"`
	Total int          `json:"total"`
}

// UserService defines the matrix-guarded user management use cases. Every
// operation receives the acting user; what the actor may do to a target is
// decided by the actor role's grant matrix, with the admin role bypassing
// all checks.
type UserService interface {
	Create(ctx context.Context, actor *model.User, in CreateUserInput) (*model.User, error)
	Get(ctx context.Context, actor *model.User, id int64) (*model.User, error)

	// List returns the page of users the actor may read. Non-admin actors only
	// see users whose role is covered by a read grant.
	List(ctx context.Context, actor *model.User, limit, offset int) (*UserListResult, error)

	Update(ctx context.Context, actor *model.User, id int64, in UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, actor *model.User, id int64) error

	// UploadAvatar stores the image in object storage and replaces any
	// previous avatar object.
	UploadAvatar(ctx context.Context, user *model.User, r io.Reader, originalFilename, contentType string, size int64) (*model.User, error)

	// AvatarURL returns a time-limited download URL for the user's avatar.
	AvatarURL(ctx context.Context, user *model.User) (string, error)

	// Permissions returns the named permissions of the user's role.
	Permissions(ctx context.Context, actor *model.User, userID int64) ([]string, error)
}

type userService struct {
	users  repository.UserRepository
	matrix repository.MatrixRepository
	perms  repository.PermissionRepository
	store  storage.Storage
	audit  recorder
}

// NewUserService constructs a UserService.
func NewUserService(
	users repository.UserRepository,
	matrix repository.MatrixRepository,
	perms repository.PermissionRepository,
	store storage.Storage,
	auditRepo repository.AuditRepository,
) UserService {
	return &userService{
		users:  users,
		matrix: matrix,
		perms:  perms,
		store:  store,
		audit:  recorder{repo: auditRepo},
	}
}

// grantsFor loads the actor role's grant matrix. A missing row means no grants.
func (s *userService) grantsFor(ctx context.Context, actor *model.User) (map[string][]string, error) {
	m, err := s.matrix.FindByRoleID(ctx, actor.RoleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return map[string][]string{}, nil
		}
		return nil, err
	}
	return m.Grants, nil
}

func (s *userService) Create(ctx context.Context, actor *model.User, in CreateUserInput) (*model.User, error) {
	if !actor.IsAdmin() {
		grants, err := s.grantsFor(ctx, actor)
		if err != nil {
			return nil, err
		}
		if !rbac.CanAct(grants, in.RoleID, rbac.ActionCreate) {
			return nil, ErrForbidden
		}
	}
	if err := auth.ValidatePasswordStrength(in.Password); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	user := &model.User{
		Email:          in.Email,
		Username:       in.Username,
		HashedPassword: hashed,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		RoleID:         in.RoleID,
		IsActive:       active,
		IsVerified:     true, // admin-created accounts skip email verification
	}
	stored, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.audit.record(ctx, actor, model.AuditCreate, "user", stored.ID, map[string]any{
		"email": stored.Email, "username": stored.Username, "role_id": stored.RoleID,
	})
	return stored, nil
}

func (s *userService) Get(ctx context.Context, actor *model.User, id int64) (*model.User, error) {
	if id == 0 {
		return nil, ErrIDRequired
	}
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if actor.ID == target.ID || actor.IsAdmin() {
		return target, nil
	}
	grants, err := s.grantsFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !rbac.CanAct(grants, target.RoleID, rbac.ActionRead) {
		return nil, ErrForbidden
	}
	return target, nil
}

func (s *userService) List(ctx context.Context, actor *model.User, limit, offset int) (*UserListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var roleIDs []int64
	if !actor.IsAdmin() {
		grants, err := s.grantsFor(ctx, actor)
		if err != nil {
			return nil, err
		}
		roleIDs = rbac.GrantedRoleIDs(grants, rbac.ActionRead)
		if len(roleIDs) == 0 {
			return &UserListResult{Items: []model.User{}, Total: 0}, nil
		}
	}

	res, err := s.users.List(ctx, repository.PageQuery{Limit: limit, Offset: offset}, roleIDs)
	if err != nil {
		return nil, err
	}
	return &UserListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *userService) Update(ctx context.Context, actor *model.User, id int64, in UpdateUserInput) (*model.User, error) {
	if id == 0 {
		return nil, ErrIDRequired
	}
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.IsAdmin() {
		grants, err := s.grantsFor(ctx, actor)
		if err != nil {
			return nil, err
		}
		if !rbac.CanAct(grants, target.RoleID, rbac.ActionUpdate) {
			return nil, ErrForbidden
		}
		// Moving a user to another role also requires an update grant there.
		if in.RoleID != nil && *in.RoleID != target.RoleID && !rbac.CanAct(grants, *in.RoleID, rbac.ActionUpdate) {
			return nil, ErrForbidden
		}
	}

	changes := map[string]any{}
	if in.Email != nil && *in.Email != target.Email {
		if _, err := s.users.FindByEmail(ctx, *in.Email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		target.Email = *in.Email
		changes["email"] = *in.Email
	}
	if in.Username != nil && *in.Username != target.Username {
		if _, err := s.users.FindByUsername(ctx, *in.Username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		target.Username = *in.Username
		changes["username"] = *in.Username
	}
	if in.FirstName != nil {
		target.FirstName = *in.FirstName
		changes["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		target.LastName = *in.LastName
		changes["last_name"] = *in.LastName
	}
	if in.RoleID != nil && *in.RoleID != target.RoleID {
		target.RoleID = *in.RoleID
		changes["role_id"] = *in.RoleID
	}
	if in.IsActive != nil {
		target.IsActive = *in.IsActive
		changes["is_active"] = *in.IsActive
	}
	if in.Password != nil {
		if err := auth.ValidatePasswordStrength(*in.Password); err != nil {
			return nil, err
		}
		hashed, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		target.HashedPassword = hashed
		// Never write the plaintext to the audit trail.
		changes["password"] = "***"
	}

	updated, err := s.users.Update(ctx, target)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		s.audit.record(ctx, actor, model.AuditUpdate, "user", updated.ID, changes)
	}
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, actor *model.User, id int64) error {
	if id == 0 {
		return ErrIDRequired
	}
	if actor.ID == id {
		return ErrForbidden
	}
	var grants map[string][]string
	if !actor.IsAdmin() {
		var err error
		grants, err = s.grantsFor(ctx, actor)
		if err != nil {
			return err
		}
		// Coarse guard: with no delete grant at all, the target's existence
		// is not revealed.
		if !rbac.HasAnyGrant(grants, rbac.ActionDelete) {
			return ErrForbidden
		}
	}
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !actor.IsAdmin() && !rbac.CanAct(grants, target.RoleID, rbac.ActionDelete) {
		return ErrForbidden
	}
	if target.AvatarPath != "" {
		if err := s.store.Delete(ctx, target.AvatarPath); err != nil {
			return fmt.Errorf("delete avatar object: %w", err)
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.record(ctx, actor, model.AuditDelete, "user", id, map[string]any{"email": target.Email})
	return nil
}

func (s *userService) UploadAvatar(ctx context.Context, user *model.User, r io.Reader, originalFilename, contentType string, size int64) (*model.User, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	ext := filepath.Ext(originalFilename)
	key := filepath.ToSlash(filepath.Join("avatars", uuid.New().String()+ext))

	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": originalFilename},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	previous := user.AvatarPath
	user.AvatarPath = key
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		// Roll back the freshly stored object so it is not orphaned.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	if previous != "" {
		if err := s.store.Delete(ctx, previous); err != nil {
			return nil, fmt.Errorf("delete previous avatar: %w", err)
		}
	}
	return updated, nil
}

func (s *userService) AvatarURL(ctx context.Context, user *model.User) (string, error) {
	if user.AvatarPath == "" {
		return "", ErrNotFound
	}
	return s.store.PresignGet(ctx, user.AvatarPath, 15*time.Minute)
}

func (s *userService) Permissions(ctx context.Context, actor *model.User, userID int64) ([]string, error) {
	target := actor
	if userID != 0 && userID != actor.ID {
		if !actor.IsStaff() {
			return nil, ErrForbidden
		}
		u, err := s.users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		target = u
	}
	return s.perms.ListForRole(ctx, target.RoleID)
}
