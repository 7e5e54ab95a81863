package routes

import (
	"github.com/anjiri1684/course_marketplace/handlers"
	"github.com/anjiri1684/course_marketplace/middleware"
	"github.com/gofiber/fiber/v2"
)

func InstructorRoutes(app *fiber.App, protected fiber.Handler) {
	course := app.Group("/instructor/course", protected, middleware.InstructorRequired())
	course.Post("/add", handlers.AddNewCourse)
	course.Get("/get", handlers.GetAllCourses)
	course.Get("/get/details/:id", handlers.GetCourseDetailsByID)
	course.Put("/update/:id", handlers.UpdateCourseByID)
}
