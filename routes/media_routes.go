package routes

import (
	"github.com/anjiri1684/course_marketplace/handlers"
	"github.com/anjiri1684/course_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func MediaRoutes(app *fiber.App, protected fiber.Handler, h *handlers.MediaHandler) {
	mediaGroup := app.Group("/media", protected, middleware.InstructorRequired())
	mediaGroup.Post("/upload", h.UploadMedia)
	mediaGroup.Post("/bulk-upload", h.BulkUploadMedia)
	mediaGroup.Delete("/delete/*", h.DeleteMedia)
	mediaGroup.Get("/signature", h.GenerateUploadSignature)
}
