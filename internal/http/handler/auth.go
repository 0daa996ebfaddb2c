package handler

import (
	"context"
	"net/mail"

	"github.com/gofiber/fiber/v2"

	"schoolapi/internal/http/middleware"
	"schoolapi/internal/model"
	"schoolapi/internal/service"
)

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	RoleID    int64  `json:"role_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *model.User `json:"user"`
}

// Register handles POST /api/auth/register.
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Email == "" || req.Username == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "email, username and password are required")
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_EMAIL", "invalid email address")
		}
		user, err := svc.Register(c.UserContext(), service.RegisterInput{
			Email:     req.Email,
			Username:  req.Username,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			RoleID:    req.RoleID,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

type loginFunc func(ctx context.Context, email, password string) (string, *model.User, error)

func login(fn loginFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "email and password are required")
		}
		token, user, err := fn(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tokenResponse{AccessToken: token, TokenType: "bearer", User: user})
	}
}

// Login handles POST /api/auth/login.
func Login(svc service.AuthService) fiber.Handler {
	return login(svc.Login)
}

// AdminLogin handles POST /api/auth/admin-login. Only the admin role and the
// roles on the admin-access list receive a token here.
func AdminLogin(svc service.AuthService) fiber.Handler {
	return login(svc.AdminLogin)
}

// VerifyAccount handles GET /api/auth/verify/:code.
func VerifyAccount(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := svc.Verify(c.UserContext(), c.Params("code"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(user)
	}
}

// ForgotPassword handles POST /api/auth/forgot-password. It always answers
// 202 so the endpoint cannot be used to probe registered addresses.
func ForgotPassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Email string `json:"email"`
		}
		if err := c.BodyParser(&req); err != nil || req.Email == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "email is required")
		}
		if err := svc.ForgotPassword(c.UserContext(), req.Email); err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
	}
}

// VerifyResetCode handles POST /api/auth/verify-reset-code.
func VerifyResetCode(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Email string `json:"email"`
			Code  string `json:"code"`
		}
		if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Code == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "email and code are required")
		}
		if err := svc.VerifyResetCode(c.UserContext(), req.Email, req.Code); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"valid": true})
	}
}

// ResetPassword handles POST /api/auth/reset-password.
func ResetPassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Email       string `json:"email"`
			Code        string `json:"code"`
			NewPassword string `json:"new_password"`
		}
		if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Code == "" || req.NewPassword == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "email, code and new_password are required")
		}
		if err := svc.ResetPassword(c.UserContext(), req.Email, req.Code, req.NewPassword); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"status": "password updated"})
	}
}

// Me handles GET /api/auth/me.
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(middleware.UserFromCtx(c))
	}
}

// UpdatePassword handles PUT /api/auth/update-password.
func UpdatePassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := c.BodyParser(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "current_password and new_password are required")
		}
		if err := svc.UpdatePassword(c.UserContext(), middleware.UserFromCtx(c), req.CurrentPassword, req.NewPassword); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"status": "password updated"})
	}
}
