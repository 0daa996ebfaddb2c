package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"schoolapi/internal/http/middleware"
	"schoolapi/internal/service"
)

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateRole handles POST /api/rbac/roles.
func CreateRole(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req roleRequest
		if err := c.BodyParser(&req); err != nil || req.Name == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "name is required")
		}
		role, err := svc.CreateRole(c.UserContext(), middleware.UserFromCtx(c), req.Name, req.Description)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(role)
	}
}

// ListRoles handles GET /api/rbac/roles.
func ListRoles(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, err := svc.ListRoles(c.UserContext(), middleware.UserFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(roles)
	}
}

// GetRole handles GET /api/rbac/roles/:id.
func GetRole(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		role, err := svc.GetRole(c.UserContext(), middleware.UserFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(role)
	}
}

// UpdateRole handles PUT /api/rbac/roles/:id.
func UpdateRole(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req roleRequest
		if err := c.BodyParser(&req); err != nil || req.Name == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "name is required")
		}
		role, err := svc.UpdateRole(c.UserContext(), middleware.UserFromCtx(c), id, req.Name, req.Description)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(role)
	}
}

// DeleteRole handles DELETE /api/rbac/roles/:id.
func DeleteRole(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.DeleteRole(c.UserContext(), middleware.UserFromCtx(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListMatrix handles GET /api/rbac/matrix.
func ListMatrix(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListMatrix(c.UserContext(), middleware.UserFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rows)
	}
}

// GetMatrix handles GET /api/rbac/matrix/:id (role id).
func GetMatrix(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		row, err := svc.GetMatrix(c.UserContext(), middleware.UserFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(row)
	}
}

// UpdateMatrix handles PUT /api/rbac/matrix/:id (role id).
func UpdateMatrix(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req struct {
			Grants map[string][]string `json:"grants"`
		}
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		row, err := svc.UpdateMatrix(c.UserContext(), middleware.UserFromCtx(c), id, req.Grants)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(row)
	}
}

// DeleteMatrixEntry handles DELETE /api/rbac/matrix/:id/:target, removing one
// target-role entry from the acting role's grants.
func DeleteMatrixEntry(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		target, err := strconv.ParseInt(c.Params("target"), 10, 64)
		if err != nil || target <= 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		row, err := svc.DeleteMatrixEntry(c.UserContext(), middleware.UserFromCtx(c), id, target)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(row)
	}
}

// GetRoleSetting handles GET /api/rbac/settings/:kind.
func GetRoleSetting(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		setting, err := svc.GetSetting(c.UserContext(), middleware.UserFromCtx(c), c.Params("kind"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(setting)
	}
}

// UpdateRoleSetting handles PUT /api/rbac/settings/:kind.
func UpdateRoleSetting(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			RoleIDs []int64 `json:"role_ids"`
		}
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		setting, err := svc.UpdateSetting(c.UserContext(), middleware.UserFromCtx(c), c.Params("kind"), req.RoleIDs)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(setting)
	}
}

// ListPermissions handles GET /api/rbac/permissions.
func ListPermissions(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		perms, err := svc.ListPermissions(c.UserContext(), middleware.UserFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(perms)
	}
}

// RolePermissions handles GET /api/rbac/roles/:id/permissions.
func RolePermissions(svc service.RbacService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		names, err := svc.RolePermissions(c.UserContext(), middleware.UserFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"permissions": names})
	}
}
