package handlers

import (
	"errors"
	"log"

	config "github.com/anjiri1684/course_marketplace/configs"
	"github.com/anjiri1684/course_marketplace/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func respondError(c *fiber.Ctx, status int, message string, detail any) error {
	body := fiber.Map{"success": false, "message": message}
	if detail != nil {
		body["error"] = detail
	}
	return c.Status(status).JSON(body)
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		log.Printf("🔥 %s %s: %v", c.Method(), c.Path(), err)
		var detail any
		if config.Development() {
			detail = err.Error()
		}
		return respondError(c, fiber.StatusInternalServerError, "Server error occurred", detail)
	}

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalid):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	}
	return respondError(c, status, svcErr.Message, svcErr.Detail)
}

// bindJSON parses and validates the body into dst. When it returns false the
// error response has already been written and err is the result to return.
func bindJSON(c *fiber.Ctx, dst any, invalidMessage string) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return false, respondError(c, fiber.StatusBadRequest, "Cannot parse JSON", nil)
	}
	if err := validate.Struct(dst); err != nil {
		return false, respondError(c, fiber.StatusBadRequest, invalidMessage, err.Error())
	}
	return true, nil
}
