package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"schoolapi/internal/model"
	"schoolapi/internal/service"
)

// CurrentUserLocalKey is the key used to store the authenticated user in
// Fiber's context locals.
const CurrentUserLocalKey = "current_user"

// RequireUser authenticates requests with a Bearer token. The resolved user
// is stored in context locals and the request's client details are attached
// to the user context for audit recording.
func RequireUser(authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		user, err := authSvc.UserFromToken(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(CurrentUserLocalKey, user)
		c.SetUserContext(service.WithMeta(c.UserContext(), service.RequestMeta{
			IPAddress: c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		}))
		return c.Next()
	}
}

// UserFromCtx returns the user stored by RequireUser, or nil on anonymous
// routes.
func UserFromCtx(c *fiber.Ctx) *model.User {
	user, _ := c.Locals(CurrentUserLocalKey).(*model.User)
	return user
}
