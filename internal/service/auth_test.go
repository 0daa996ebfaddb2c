package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"schoolapi/internal/auth"
	mailMocks "schoolapi/internal/mail/mocks"
	"schoolapi/internal/model"
	repoMocks "schoolapi/internal/repository/mocks"
)

func testIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer("test-secret", 60)
	require.NoError(t, err)
	return issuer
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	openSetting := &model.RoleSetting{Kind: model.SettingPublicRegistration, RoleIDs: []int64{3}}

	tests := []struct {
		name       string
		in         RegisterInput
		setupMocks func(users *repoMocks.MockUserRepository, settings *repoMocks.MockSettingRepository, mailer *mailMocks.MockMailer)
		wantErr    error
	}{
		{
			name: "happy path with default role",
			in:   RegisterInput{Email: "new@example.com", Username: "newuser", Password: "Sup3rSecret!"},
			setupMocks: func(users *repoMocks.MockUserRepository, settings *repoMocks.MockSettingRepository, mailer *mailMocks.MockMailer) {
				settings.On("FindByKind", ctx, model.SettingPublicRegistration).Return(openSetting, nil)
				users.On("FindByEmail", ctx, "new@example.com").Return(nil, sql.ErrNoRows)
				users.On("FindByUsername", ctx, "newuser").Return(nil, sql.ErrNoRows)
				users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.RoleID == 3 && u.IsActive && !u.IsVerified && u.VerificationToken != ""
				})).Return(&model.User{ID: 7, Email: "new@example.com", RoleID: 3}, nil)
				mailer.On("SendVerification", ctx, "new@example.com", mock.AnythingOfType("string")).Return(nil)
			},
		},
		{
			name:    "weak password rejected",
			in:      RegisterInput{Email: "new@example.com", Username: "newuser", Password: "short"},
			wantErr: auth.ErrPasswordTooShort,
		},
		{
			name: "role not open for registration",
			in:   RegisterInput{Email: "new@example.com", Username: "newuser", Password: "Sup3rSecret!", RoleID: 1},
			setupMocks: func(users *repoMocks.MockUserRepository, settings *repoMocks.MockSettingRepository, mailer *mailMocks.MockMailer) {
				settings.On("FindByKind", ctx, model.SettingPublicRegistration).Return(openSetting, nil)
			},
			wantErr: ErrRegistrationClosed,
		},
		{
			name: "registration closed entirely",
			in:   RegisterInput{Email: "new@example.com", Username: "newuser", Password: "Sup3rSecret!"},
			setupMocks: func(users *repoMocks.MockUserRepository, settings *repoMocks.MockSettingRepository, mailer *mailMocks.MockMailer) {
				settings.On("FindByKind", ctx, model.SettingPublicRegistration).
					Return(&model.RoleSetting{Kind: model.SettingPublicRegistration, RoleIDs: []int64{}}, nil)
			},
			wantErr: ErrRegistrationClosed,
		},
		{
			name: "email already registered",
			in:   RegisterInput{Email: "dup@example.com", Username: "newuser", Password: "Sup3rSecret!"},
			setupMocks: func(users *repoMocks.MockUserRepository, settings *repoMocks.MockSettingRepository, mailer *mailMocks.MockMailer) {
				settings.On("FindByKind", ctx, model.SettingPublicRegistration).Return(openSetting, nil)
				users.On("FindByEmail", ctx, "dup@example.com").Return(&model.User{ID: 1}, nil)
			},
			wantErr: ErrEmailTaken,
		},
		{
			name: "username already taken",
			in:   RegisterInput{Email: "new@example.com", Username: "dup", Password: "Sup3rSecret!"},
			setupMocks: func(users *repoMocks.MockUserRepository, settings *repoMocks.MockSettingRepository, mailer *mailMocks.MockMailer) {
				settings.On("FindByKind", ctx, model.SettingPublicRegistration).Return(openSetting, nil)
				users.On("FindByEmail", ctx, "new@example.com").Return(nil, sql.ErrNoRows)
				users.On("FindByUsername", ctx, "dup").Return(&model.User{ID: 2}, nil)
			},
			wantErr: ErrUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(repoMocks.MockUserRepository)
			settings := new(repoMocks.MockSettingRepository)
			mailer := new(mailMocks.MockMailer)
			if tt.setupMocks != nil {
				tt.setupMocks(users, settings, mailer)
			}
			svc := NewAuthService(users, settings, testIssuer(t), mailer)

			got, err := svc.Register(ctx, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, int64(7), got.ID)
			}
			users.AssertExpectations(t)
			settings.AssertExpectations(t)
			mailer.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hashed := mustHash(t, "Sup3rSecret!")

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(users *repoMocks.MockUserRepository)
		wantErr    error
	}{
		{
			name:     "happy path",
			email:    "a@example.com",
			password: "Sup3rSecret!",
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("FindByEmail", ctx, "a@example.com").
					Return(&model.User{ID: 1, Email: "a@example.com", HashedPassword: hashed, IsActive: true}, nil)
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "Sup3rSecret!",
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("FindByEmail", ctx, "nobody@example.com").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "a@example.com",
			password: "WrongPass1!",
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("FindByEmail", ctx, "a@example.com").
					Return(&model.User{ID: 1, HashedPassword: hashed, IsActive: true}, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "inactive account",
			email:    "a@example.com",
			password: "Sup3rSecret!",
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("FindByEmail", ctx, "a@example.com").
					Return(&model.User{ID: 1, HashedPassword: hashed, IsActive: false}, nil)
			},
			wantErr: ErrInactiveAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(repoMocks.MockUserRepository)
			settings := new(repoMocks.MockSettingRepository)
			tt.setupMocks(users)
			svc := NewAuthService(users, settings, testIssuer(t), new(mailMocks.MockMailer))

			token, user, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
				require.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_AdminLogin(t *testing.T) {
	ctx := context.Background()
	hashed := mustHash(t, "Sup3rSecret!")
	adminRole := &model.Role{ID: 1, Name: model.RoleAdmin}
	editorRole := &model.Role{ID: 2, Name: model.RoleEditor}

	t.Run("admin role passes", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		settings := new(repoMocks.MockSettingRepository)
		users.On("FindByEmail", ctx, "root@example.com").
			Return(&model.User{ID: 1, Email: "root@example.com", HashedPassword: hashed, IsActive: true, RoleID: 1, Role: adminRole}, nil)
		svc := NewAuthService(users, settings, testIssuer(t), new(mailMocks.MockMailer))

		token, _, err := svc.AdminLogin(ctx, "root@example.com", "Sup3rSecret!")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("role listed in admin access setting passes", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		settings := new(repoMocks.MockSettingRepository)
		users.On("FindByEmail", ctx, "staff@example.com").
			Return(&model.User{ID: 2, Email: "staff@example.com", HashedPassword: hashed, IsActive: true, RoleID: 2, Role: editorRole}, nil)
		settings.On("FindByKind", ctx, model.SettingAdminAccess).
			Return(&model.RoleSetting{Kind: model.SettingAdminAccess, RoleIDs: []int64{2}}, nil)
		svc := NewAuthService(users, settings, testIssuer(t), new(mailMocks.MockMailer))

		token, _, err := svc.AdminLogin(ctx, "staff@example.com", "Sup3rSecret!")
		assert.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("unlisted role is rejected", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		settings := new(repoMocks.MockSettingRepository)
		users.On("FindByEmail", ctx, "staff@example.com").
			Return(&model.User{ID: 2, Email: "staff@example.com", HashedPassword: hashed, IsActive: true, RoleID: 2, Role: editorRole}, nil)
		settings.On("FindByKind", ctx, model.SettingAdminAccess).
			Return(&model.RoleSetting{Kind: model.SettingAdminAccess, RoleIDs: []int64{}}, nil)
		svc := NewAuthService(users, settings, testIssuer(t), new(mailMocks.MockMailer))

		_, _, err := svc.AdminLogin(ctx, "staff@example.com", "Sup3rSecret!")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestAuthService_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the account verified and clears the code", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		users.On("FindByVerificationToken", ctx, "abc123").
			Return(&model.User{ID: 4, VerificationToken: "abc123"}, nil)
		users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.IsVerified && u.VerificationToken == ""
		})).Return(&model.User{ID: 4, IsVerified: true}, nil)
		svc := NewAuthService(users, new(repoMocks.MockSettingRepository), testIssuer(t), new(mailMocks.MockMailer))

		got, err := svc.Verify(ctx, "abc123")
		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsVerified)
		users.AssertExpectations(t)
	})

	t.Run("unknown code", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		users.On("FindByVerificationToken", ctx, "bogus").Return(nil, sql.ErrNoRows)
		svc := NewAuthService(users, new(repoMocks.MockSettingRepository), testIssuer(t), new(mailMocks.MockMailer))

		_, err := svc.Verify(ctx, "bogus")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("empty code", func(t *testing.T) {
		svc := NewAuthService(new(repoMocks.MockUserRepository), new(repoMocks.MockSettingRepository), testIssuer(t), new(mailMocks.MockMailer))
		_, err := svc.Verify(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a code and mails it", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		mailer := new(mailMocks.MockMailer)
		users.On("FindByEmail", ctx, "a@example.com").Return(&model.User{ID: 1, Email: "a@example.com"}, nil)
		users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.VerificationToken != ""
		})).Return(&model.User{ID: 1}, nil)
		mailer.On("SendPasswordReset", ctx, "a@example.com", mock.AnythingOfType("string")).Return(nil)
		svc := NewAuthService(users, new(repoMocks.MockSettingRepository), testIssuer(t), mailer)

		assert.NoError(t, svc.ForgotPassword(ctx, "a@example.com"))
		mailer.AssertExpectations(t)
	})

	t.Run("unknown address succeeds silently", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, sql.ErrNoRows)
		mailer := new(mailMocks.MockMailer)
		svc := NewAuthService(users, new(repoMocks.MockSettingRepository), testIssuer(t), mailer)

		assert.NoError(t, svc.ForgotPassword(ctx, "ghost@example.com"))
		mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("valid code sets new password and clears the code", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		users.On("FindByEmail", ctx, "a@example.com").
			Return(&model.User{ID: 1, Email: "a@example.com", VerificationToken: "code12"}, nil)
		users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.VerificationToken == "" && auth.VerifyPassword("N3wSecret!pass", u.HashedPassword)
		})).Return(&model.User{ID: 1}, nil)
		svc := NewAuthService(users, new(repoMocks.MockSettingRepository), testIssuer(t), new(mailMocks.MockMailer))

		assert.NoError(t, svc.ResetPassword(ctx, "a@example.com", "code12", "N3wSecret!pass"))
		users.AssertExpectations(t)
	})

	t.Run("wrong code", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		users.On("FindByEmail", ctx, "a@example.com").
			Return(&model.User{ID: 1, VerificationToken: "code12"}, nil)
		svc := NewAuthService(users, new(repoMocks.MockSettingRepository), testIssuer(t), new(mailMocks.MockMailer))

		err := svc.ResetPassword(ctx, "a@example.com", "other", "N3wSecret!pass")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("weak replacement password", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		users.On("FindByEmail", ctx, "a@example.com").
			Return(&model.User{ID: 1, VerificationToken: "code12"}, nil)
		svc := NewAuthService(users, new(repoMocks.MockSettingRepository), testIssuer(t), new(mailMocks.MockMailer))

		err := svc.ResetPassword(ctx, "a@example.com", "code12", "weak")
		assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
	})
}

func TestAuthService_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	hashed := mustHash(t, "Sup3rSecret!")

	t.Run("happy path", func(t *testing.T) {
		users := new(repoMocks.MockUserRepository)
		user := &model.User{ID: 1, HashedPassword: hashed}
		users.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
			return auth.VerifyPassword("N3wSecret!pass", u.HashedPassword)
		})).Return(user, nil)
		svc := NewAuthService(users, new(repoMocks.MockSettingRepository), testIssuer(t), new(mailMocks.MockMailer))

		assert.NoError(t, svc.UpdatePassword(ctx, user, "Sup3rSecret!", "N3wSecret!pass"))
	})

	t.Run("wrong current password", func(t *testing.T) {
		svc := NewAuthService(new(repoMocks.MockUserRepository), new(repoMocks.MockSettingRepository), testIssuer(t), new(mailMocks.MockMailer))
		err := svc.UpdatePassword(ctx, &model.User{HashedPassword: hashed}, "nope", "N3wSecret!pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("new password equals current", func(t *testing.T) {
		svc := NewAuthService(new(repoMocks.MockUserRepository), new(repoMocks.MockSettingRepository), testIssuer(t), new(mailMocks.MockMailer))
		err := svc.UpdatePassword(ctx, &model.User{HashedPassword: hashed}, "Sup3rSecret!", "Sup3rSecret!")
		assert.ErrorIs(t, err, ErrSamePassword)
	})
}

func TestAuthService_UserFromToken(t *testing.T) {
	ctx := context.Background()
	issuer := testIssuer(t)

	t.Run("round trip", func(t *testing.T) {
		token, err := issuer.Issue("a@example.com")
		require.NoError(t, err)

		users := new(repoMocks.MockUserRepository)
		users.On("FindByEmail", ctx, "a@example.com").
			Return(&model.User{ID: 1, Email: "a@example.com", IsActive: true}, nil)
		svc := NewAuthService(users, new(repoMocks.MockSettingRepository), issuer, new(mailMocks.MockMailer))

		user, err := svc.UserFromToken(ctx, token)
		assert.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "a@example.com", user.Email)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := NewAuthService(new(repoMocks.MockUserRepository), new(repoMocks.MockSettingRepository), issuer, new(mailMocks.MockMailer))
		_, err := svc.UserFromToken(ctx, "not-a-token")
		assert.Error(t, err)
	})

	t.Run("token for a deleted account", func(t *testing.T) {
		token, err := issuer.Issue("gone@example.com")
		require.NoError(t, err)

		users := new(repoMocks.MockUserRepository)
		users.On("FindByEmail", ctx, "gone@example.com").Return(nil, sql.ErrNoRows)
		svc := NewAuthService(users, new(repoMocks.MockSettingRepository), issuer, new(mailMocks.MockMailer))

		_, err = svc.UserFromToken(ctx, token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("inactive account", func(t *testing.T) {
		token, err := issuer.Issue("off@example.com")
		require.NoError(t, err)

		users := new(repoMocks.MockUserRepository)
		users.On("FindByEmail", ctx, "off@example.com").
			Return(&model.User{ID: 3, Email: "off@example.com", IsActive: false}, nil)
		svc := NewAuthService(users, new(repoMocks.MockSettingRepository), issuer, new(mailMocks.MockMailer))

		_, err = svc.UserFromToken(ctx, token)
		assert.ErrorIs(t, err, ErrInactiveAccount)
	})
}
