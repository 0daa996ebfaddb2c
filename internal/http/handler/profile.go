package handler

import (
	"github.com/gofiber/fiber/v2"

	"schoolapi/internal/http/middleware"
	"schoolapi/internal/service"
)

type createProfileRequest struct {
	UserID      int64  `json:"user_id"`
	StudentID   string `json:"student_id"`
	Department  string `json:"department"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type updateProfileRequest struct {
	Department  *string `json:"department"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
}

// CreateProfile handles POST /api/student-profiles.
func CreateProfile(svc service.StudentProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.StudentID == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "student_id is required")
		}
		profile, err := svc.Create(c.UserContext(), middleware.UserFromCtx(c), service.CreateProfileInput{
			UserID:      req.UserID,
			StudentID:   req.StudentID,
			Department:  req.Department,
			PhoneNumber: req.PhoneNumber,
			Address:     req.Address,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(profile)
	}
}

// ListProfiles handles GET /api/student-profiles.
func ListProfiles(svc service.StudentProfileService) fiber.Handler {
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

// GetMyProfile handles GET /api/student-profiles/me.
func GetMyProfile(svc service.StudentProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := middleware.UserFromCtx(c)
		profile, err := svc.GetByUser(c.UserContext(), actor, actor.ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(profile)
	}
}

// GetProfile handles GET /api/student-profiles/:id.
func GetProfile(svc service.StudentProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		profile, err := svc.Get(c.UserContext(), middleware.UserFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(profile)
	}
}

// UpdateProfile handles PUT /api/student-profiles/:id.
func UpdateProfile(svc service.StudentProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		profile, err := svc.Update(c.UserContext(), middleware.UserFromCtx(c), id, service.UpdateProfileInput{
			Department:  req.Department,
			PhoneNumber: req.PhoneNumber,
			Address:     req.Address,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(profile)
	}
}

// DeleteProfile handles DELETE /api/student-profiles/:id.
func DeleteProfile(svc service.StudentProfileService) fiber.Handler {
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
