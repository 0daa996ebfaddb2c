package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"schoolapi/internal/http/middleware"
	"schoolapi/internal/service"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Auth     service.AuthService
	Users    service.UserService
	Rbac     service.RbacService
	Courses  service.CourseService
	Profiles service.StudentProfileService
	Admin    service.AdminService
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
// Handlers stay free of business logic; authorization decisions live in the
// service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health endpoint: checks DB connectivity only
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Simple liveness probe
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	api := app.Group("/api")
	requireUser := middleware.RequireUser(svcs.Auth)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", Register(svcs.Auth))
	authGroup.Post("/login", Login(svcs.Auth))
	authGroup.Post("/admin-login", AdminLogin(svcs.Auth))
	authGroup.Get("/verify/:code", VerifyAccount(svcs.Auth))
	authGroup.Post("/forgot-password", ForgotPassword(svcs.Auth))
	authGroup.Post("/verify-reset-code", VerifyResetCode(svcs.Auth))
	authGroup.Post("/reset-password", ResetPassword(svcs.Auth))
	authGroup.Get("/me", requireUser, Me())
	authGroup.Put("/update-password", requireUser, UpdatePassword(svcs.Auth))

	users := api.Group("/users", requireUser)
	users.Get("/me/permissions", MyPermissions(svcs.Users))
	users.Post("/me/avatar", UploadAvatar(svcs.Users))
	users.Get("/me/avatar", GetAvatar(svcs.Users))
	users.Post("/", CreateUser(svcs.Users))
	users.Get("/", ListUsers(svcs.Users))
	users.Get("/:id", GetUser(svcs.Users))
	users.Put("/:id", UpdateUser(svcs.Users))
	users.Delete("/:id", DeleteUser(svcs.Users))
	users.Get("/:id/permissions", UserPermissions(svcs.Users))

	rbacGroup := api.Group("/rbac", requireUser)
	rbacGroup.Post("/roles", CreateRole(svcs.Rbac))
	rbacGroup.Get("/roles", ListRoles(svcs.Rbac))
	rbacGroup.Get("/roles/:id", GetRole(svcs.Rbac))
	rbacGroup.Put("/roles/:id", UpdateRole(svcs.Rbac))
	rbacGroup.Delete("/roles/:id", DeleteRole(svcs.Rbac))
	rbacGroup.Get("/roles/:id/permissions", RolePermissions(svcs.Rbac))
	rbacGroup.Get("/matrix", ListMatrix(svcs.Rbac))
	rbacGroup.Get("/matrix/:id", GetMatrix(svcs.Rbac))
	rbacGroup.Put("/matrix/:id", UpdateMatrix(svcs.Rbac))
	rbacGroup.Delete("/matrix/:id/:target", DeleteMatrixEntry(svcs.Rbac))
	rbacGroup.Get("/settings/:kind", GetRoleSetting(svcs.Rbac))
	rbacGroup.Put("/settings/:kind", UpdateRoleSetting(svcs.Rbac))
	rbacGroup.Get("/permissions", ListPermissions(svcs.Rbac))

	courses := api.Group("/courses", requireUser)
	courses.Post("/", CreateCourse(svcs.Courses))
	courses.Get("/", ListCourses(svcs.Courses))
	courses.Get("/:id", GetCourse(svcs.Courses))
	courses.Put("/:id", UpdateCourse(svcs.Courses))
	courses.Delete("/:id", DeleteCourse(svcs.Courses))

	profiles := api.Group("/student-profiles", requireUser)
	profiles.Post("/", CreateProfile(svcs.Profiles))
	profiles.Get("/", ListProfiles(svcs.Profiles))
	profiles.Get("/me", GetMyProfile(svcs.Profiles))
	profiles.Get("/:id", GetProfile(svcs.Profiles))
	profiles.Put("/:id", UpdateProfile(svcs.Profiles))
	profiles.Delete("/:id", DeleteProfile(svcs.Profiles))

	admin := api.Group("/admin", requireUser)
	admin.Get("/dashboard", Dashboard(svcs.Admin))
	admin.Get("/audit-logs", AuditLogs(svcs.Admin))

	api.Get("/metadata", requireUser, Metadata())
}
