package service

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP status
// codes; anything else surfaces as an internal error.
var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("resource not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrForbidden          = errors.New("not enough permissions")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrRegistrationClosed = errors.New("registration is not open for this role")
	ErrRoleInUse          = errors.New("role is assigned to users and cannot be deleted")
	ErrRoleProtected      = errors.New("built-in roles cannot be deleted")
	ErrRoleNameTaken      = errors.New("role name is already taken")
	ErrInvalidGrant       = errors.New("invalid grant")
	ErrProfileExists      = errors.New("student profile already exists for this user")
	ErrCourseCodeTaken    = errors.New("course code is already taken")
	ErrReaderNil          = errors.New("reader is nil")
)
