package handler

import (
	"github.com/gofiber/fiber/v2"

	"schoolapi/internal/http/middleware"
	"schoolapi/internal/service"
)

type createCourseRequest struct {
	Code        string  `json:"code"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Credits     float64 `json:"credits"`
	TeacherID   int64   `json:"teacher_id"`
}

type updateCourseRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Credits     *float64 `json:"credits"`
	TeacherID   *int64   `json:"teacher_id"`
}

// CreateCourse handles POST /api/courses.
func CreateCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createCourseRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Code == "" || req.Title == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "code and title are required")
		}
		course, err := svc.Create(c.UserContext(), middleware.UserFromCtx(c), service.CreateCourseInput{
			Code:        req.Code,
			Title:       req.Title,
			Description: req.Description,
			Credits:     req.Credits,
			TeacherID:   req.TeacherID,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(course)
	}
}

// ListCourses handles GET /api/courses.
func ListCourses(svc service.CourseService) fiber.Handler {
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

// GetCourse handles GET /api/courses/:id.
func GetCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		course, err := svc.Get(c.UserContext(), middleware.UserFromCtx(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(course)
	}
}

// UpdateCourse handles PUT /api/courses/:id.
func UpdateCourse(svc service.CourseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := paramID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateCourseRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		course, err := svc.Update(c.UserContext(), middleware.UserFromCtx(c), id, service.UpdateCourseInput{
			Title:       req.Title,
			Description: req.Description,
			Credits:     req.Credits,
			TeacherID:   req.TeacherID,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(course)
	}
}

// DeleteCourse handles DELETE /api/courses/:id.
func DeleteCourse(svc service.CourseService) fiber.Handler {
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
