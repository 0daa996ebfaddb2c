package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"schoolapi/internal/auth"
	"schoolapi/internal/http/middleware"
	"schoolapi/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "not enough permissions")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

// writeServiceError translates service-layer sentinel errors into the
// standardized error envelope. Unrecognized errors become a 500 without
// leaking internals.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", service.ErrForbidden.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrInactiveAccount):
		return writeError(c, fiber.StatusForbidden, "INACTIVE_ACCOUNT", service.ErrInactiveAccount.Error())
	case errors.Is(err, service.ErrInvalidCode):
		return writeError(c, fiber.StatusBadRequest, "INVALID_CODE", service.ErrInvalidCode.Error())
	case errors.Is(err, service.ErrSamePassword):
		return writeError(c, fiber.StatusBadRequest, "SAME_PASSWORD", service.ErrSamePassword.Error())
	case errors.Is(err, service.ErrRegistrationClosed):
		return writeError(c, fiber.StatusForbidden, "REGISTRATION_CLOSED", service.ErrRegistrationClosed.Error())
	case errors.Is(err, service.ErrEmailTaken):
		return writeError(c, fiber.StatusConflict, "EMAIL_TAKEN", service.ErrEmailTaken.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		return writeError(c, fiber.StatusConflict, "USERNAME_TAKEN", service.ErrUsernameTaken.Error())
	case errors.Is(err, service.ErrRoleNameTaken):
		return writeError(c, fiber.StatusConflict, "ROLE_NAME_TAKEN", service.ErrRoleNameTaken.Error())
	case errors.Is(err, service.ErrRoleInUse):
		return writeError(c, fiber.StatusConflict, "ROLE_IN_USE", service.ErrRoleInUse.Error())
	case errors.Is(err, service.ErrRoleProtected):
		return writeError(c, fiber.StatusConflict, "ROLE_PROTECTED", service.ErrRoleProtected.Error())
	case errors.Is(err, service.ErrProfileExists):
		return writeError(c, fiber.StatusBadRequest, "PROFILE_EXISTS", service.ErrProfileExists.Error())
	case errors.Is(err, service.ErrInvalidGrant):
		return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_GRANT", err.Error())
	case errors.Is(err, service.ErrCourseCodeTaken):
		return writeError(c, fiber.StatusConflict, "COURSE_CODE_TAKEN", service.ErrCourseCodeTaken.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_TOKEN", auth.ErrInvalidToken.Error())
	case isPasswordPolicyError(err):
		return writeError(c, fiber.StatusUnprocessableEntity, "WEAK_PASSWORD", err.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func isPasswordPolicyError(err error) bool {
	return errors.Is(err, auth.ErrPasswordTooShort) ||
		errors.Is(err, auth.ErrPasswordNoUpper) ||
		errors.Is(err, auth.ErrPasswordNoLower) ||
		errors.Is(err, auth.ErrPasswordNoDigit) ||
		errors.Is(err, auth.ErrPasswordNoSpecial)
}
