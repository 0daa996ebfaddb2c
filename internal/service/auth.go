package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"schoolapi/internal/auth"
	"schoolapi/internal/mail"
	"schoolapi/internal/model"
	"schoolapi/internal/repository"
)

// RegisterInput carries the public registration payload. RoleID may be zero,
// in which case the first role open to public registration is used.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	RoleID    int64
}

// AuthService defines the account lifecycle use cases: registration, login,
// email verification and password recovery.
type AuthService interface {
	// Register creates an account with a role open to public registration and
	// emails a verification link.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)

	// Login checks credentials and returns a signed access token.
	Login(ctx context.Context, email, password string) (string, *model.User, error)

	// AdminLogin is Login restricted to the admin role and any role listed in
	// the admin-access setting.
	AdminLogin(ctx context.Context, email, password string) (string, *model.User, error)

	// Verify marks the account holding the verification code as verified.
	Verify(ctx context.Context, code string) (*model.User, error)

	// ForgotPassword issues a reset code and emails it. It succeeds silently
	// for unknown addresses so the endpoint cannot be used to probe accounts.
	ForgotPassword(ctx context.Context, email string) error

	// VerifyResetCode checks a reset code without consuming it.
	VerifyResetCode(ctx context.Context, email, code string) error

	// ResetPassword consumes a reset code and sets a new password.
	ResetPassword(ctx context.Context, email, code, newPassword string) error

	// UpdatePassword changes the password of an authenticated user after
	// checking the current one.
	UpdatePassword(ctx context.Context, user *model.User, current, newPassword string) error

	// UserFromToken resolves an access token to its active user.
	UserFromToken(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	settings repository.SettingRepository
	tokens   *auth.TokenIssuer
	mailer   mail.Mailer
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users repository.UserRepository,
	settings repository.SettingRepository,
	tokens *auth.TokenIssuer,
	mailer mail.Mailer,
) AuthService {
	return &authService{users: users, settings: settings, tokens: tokens, mailer: mailer}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := auth.ValidatePasswordStrength(in.Password); err != nil {
		return nil, err
	}

	setting, err := s.settings.FindByKind(ctx, model.SettingPublicRegistration)
	if err != nil {
		return nil, fmt.Errorf("load registration roles: %w", err)
	}
	roleID := in.RoleID
	if roleID == 0 {
		if len(setting.RoleIDs) == 0 {
			return nil, ErrRegistrationClosed
		}
		roleID = setting.RoleIDs[0]
	} else if !setting.Contains(roleID) {
		return nil, ErrRegistrationClosed
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
	code, err := auth.NewVerificationCode()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:             in.Email,
		Username:          in.Username,
		HashedPassword:    hashed,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		RoleID:            roleID,
		IsActive:          true,
		VerificationToken: code,
	}
	stored, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerification(ctx, stored.Email, code); err != nil {
		return nil, fmt.Errorf("send verification mail: %w", err)
	}
	return stored, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) AdminLogin(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	if !user.IsAdmin() {
		setting, err := s.settings.FindByKind(ctx, model.SettingAdminAccess)
		if err != nil {
			return "", nil, fmt.Errorf("load admin access roles: %w", err)
		}
		if !setting.Contains(user.RoleID) {
			return "", nil, ErrForbidden
		}
	}
	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// authenticate resolves the email, checks the password and the active flag.
func (s *authService) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return user, nil
}

func (s *authService) Verify(ctx context.Context, code string) (*model.User, error) {
	if code == "" {
		return nil, ErrInvalidCode
	}
	user, err := s.users.FindByVerificationToken(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	user.IsVerified = true
	user.VerificationToken = ""
	return s.users.Update(ctx, user)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	code, err := auth.NewVerificationCode()
	if err != nil {
		return err
	}
	user.VerificationToken = code
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, user.Email, code)
}

func (s *authService) VerifyResetCode(ctx context.Context, email, code string) error {
	_, err := s.userForResetCode(ctx, email, code)
	return err
}

func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.userForResetCode(ctx, email, code)
	if err != nil {
		return err
	}
	if err := auth.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.HashedPassword = hashed
	user.VerificationToken = ""
	_, err = s.users.Update(ctx, user)
	return err
}

func (s *authService) userForResetCode(ctx context.Context, email, code string) (*model.User, error) {
	if code == "" {
		return nil, ErrInvalidCode
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if user.VerificationToken != code {
		return nil, ErrInvalidCode
	}
	return user, nil
}

func (s *authService) UpdatePassword(ctx context.Context, user *model.User, current, newPassword string) error {
	if !auth.VerifyPassword(current, user.HashedPassword) {
		return ErrInvalidCredentials
	}
	if newPassword == current {
		return ErrSamePassword
	}
	if err := auth.ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.HashedPassword = hashed
	_, err = s.users.Update(ctx, user)
	return err
}

func (s *authService) UserFromToken(ctx context.Context, token string) (*model.User, error) {
	email, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}
	return user, nil
}
