package routes

import (
	"github.com/anjiri1684/course_marketplace/handlers"
	"github.com/gofiber/fiber/v2"
)

func StudentRoutes(app *fiber.App, protected fiber.Handler, orders *handlers.OrderHandler, progress *handlers.ProgressHandler) {
	student := app.Group("/student")

	course := student.Group("/course")
	course.Get("/get", handlers.GetAllStudentViewCourses)
	course.Get("/get/details/:id", handlers.GetStudentViewCourseDetails)
	course.Get("/purchase-info/:id/:studentId", protected, handlers.CheckCoursePurchaseInfo)

	order := student.Group("/order")
	order.Post("/create", protected, orders.CreateOrder)
	// the gateway return page calls capture before the client restores its session
	order.Post("/capture", orders.CapturePaymentAndFinalizeOrder)
	order.Get("/get/:orderId", protected, orders.GetOrder)

	student.Get("/courses-bought/get/:studentId", protected, handlers.GetCoursesByStudentID)

	courseProgress := student.Group("/course-progress", protected)
	courseProgress.Get("/get/:userId/:courseId", progress.GetCurrentCourseProgress)
	courseProgress.Post("/mark-lecture-viewed", progress.MarkCurrentLectureAsViewed)
	courseProgress.Post("/reset-progress", progress.ResetCurrentCourseProgress)
}
