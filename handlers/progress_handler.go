package handlers

import (
	"github.com/anjiri1684/course_marketplace/services"
	"github.com/gofiber/fiber/v2"
)

type ProgressHandler struct {
	progress *services.ProgressService
}

func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

type markLectureRequest struct {
	UserID    string `json:"userId" validate:"required"`
	CourseID  string `json:"courseId" validate:"required"`
	LectureID string `json:"lectureId" validate:"required"`
}

type resetProgressRequest struct {
	UserID   string `json:"userId" validate:"required"`
	CourseID string `json:"courseId" validate:"required"`
}

func (h *ProgressHandler) GetCurrentCourseProgress(c *fiber.Ctx) error {
	view, err := h.progress.GetProgress(c.UserContext(), c.Params("userId"), c.Params("courseId"))
	if err != nil {
		return respondServiceError(c, err)
	}

	if !view.IsPurchased {
		return c.JSON(fiber.Map{
			"success": true,
			"data":    fiber.Map{"isPurchased": false},
			"message": view.Message,
		})
	}

	body := fiber.Map{"success": true, "data": view}
	if view.Message != "" {
		body["message"] = view.Message
	}
	return c.JSON(body)
}

func (h *ProgressHandler) MarkCurrentLectureAsViewed(c *fiber.Ctx) error {
	var req markLectureRequest
	if ok, err := bindJSON(c, &req, "Missing required fields"); !ok {
		return err
	}

	progress, err := h.progress.MarkLectureViewed(c.UserContext(), req.UserID, req.CourseID, req.LectureID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Lecture marked as viewed",
		"data":    progress,
	})
}

func (h *ProgressHandler) ResetCurrentCourseProgress(c *fiber.Ctx) error {
	var req resetProgressRequest
	if ok, err := bindJSON(c, &req, "Missing required fields"); !ok {
		return err
	}

	progress, err := h.progress.ResetProgress(c.UserContext(), req.UserID, req.CourseID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Course progress has been reset",
		"data":    progress,
	})
}
