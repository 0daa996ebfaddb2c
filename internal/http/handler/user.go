package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"schoolapi/internal/http/middleware"
	"schoolapi/internal/service"
)

// paramID parses the :id route parameter as a positive integer.
func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pageParams parses limit/offset query parameters with defaults.
func pageParams(c *fiber.Ctx) (int, int, error) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid offset")
	}
	return limit, offset, nil
}

type createUserRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	RoleID    int64  `json:"role_id"`
	IsActive  *bool  `json:"is_active"`
}

type updateUserRequest struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	RoleID    *int64  `json:"role_id"`
	IsActive  *bool   `json:"is_active"`
}

// CreateUser handles POST /api/users.
func CreateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createUserRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Email == "" || req.Username == "" || req.Password == "" || req.RoleID == 0 {
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "email, username, password and role_id are required")
		}
		user, err := svc.Create(c.UserContext(), middleware.UserFromCtx(c), service.CreateUserInput{
			Email:     req.Email,
			Username:  req.Username,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			RoleID:    req.RoleID,
			IsActive:  req.IsActive,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// ListUsers handles GET /api/users.
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageParams(c)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), middleware.UserFromCtx(c), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetUser handles GET /api/users/:id.
func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		user, err := svc.Get(c.UserContext(), middleware.UserFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(user)
	}
}

// UpdateUser handles PUT /api/users/:id.
func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		user, err := svc.Update(c.UserContext(), middleware.UserFromCtx(c), id, service.UpdateUserInput{
			Email:     req.Email,
			Username:  req.Username,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			RoleID:    req.RoleID,
			IsActive:  req.IsActive,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(user)
	}
}

// DeleteUser handles DELETE /api/users/:id.
func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), middleware.UserFromCtx(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadAvatar handles POST /api/users/me/avatar (multipart/form-data, field
// name: file).
func UploadAvatar(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}
		user, err := svc.UploadAvatar(c.UserContext(), middleware.UserFromCtx(c), f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(user)
	}
}

// GetAvatar handles GET /api/users/me/avatar and answers with a pre-signed
// download URL.
func GetAvatar(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		url, err := svc.AvatarURL(c.UserContext(), middleware.UserFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	}
}

// MyPermissions handles GET /api/users/me/permissions.
func MyPermissions(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		names, err := svc.Permissions(c.UserContext(), middleware.UserFromCtx(c), 0)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"permissions": names})
	}
}

// UserPermissions handles GET /api/users/:id/permissions.
func UserPermissions(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		names, err := svc.Permissions(c.UserContext(), middleware.UserFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"permissions": names})
	}
}
