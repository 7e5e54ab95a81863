package routes

import (
	"github.com/anjiri1684/course_marketplace/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, protected fiber.Handler) {
	auth := app.Group("/auth")
	auth.Post("/register", handlers.RegisterUser)
	auth.Post("/login", handlers.LoginUser)
	auth.Get("/check-auth", protected, handlers.CheckAuth)
}
