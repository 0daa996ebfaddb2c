package handler

import (
	"github.com/gofiber/fiber/v2"

	"schoolapi/internal/adminmeta"
	"schoolapi/internal/http/middleware"
	"schoolapi/internal/service"
)

// Dashboard handles GET /api/admin/dashboard.
func Dashboard(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dash, err := svc.Dashboard(c.UserContext(), middleware.UserFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(dash)
	}
}

// AuditLogs handles GET /api/admin/audit-logs.
func AuditLogs(svc service.AdminService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return err
		}
		res, err := svc.AuditLogs(c.UserContext(), middleware.UserFromCtx(c), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// Metadata handles GET /api/metadata with the static model registry used by
// admin frontends. Staff only.
func Metadata() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if u := middleware.UserFromCtx(c); u == nil || !u.IsStaff() {
			return writeServiceError(c, service.ErrForbidden)
		}
		return c.JSON(fiber.Map{"models": adminmeta.Registry()})
	}
}
