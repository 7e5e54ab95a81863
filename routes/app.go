package routes

import (
	"errors"
	"log"
	"strings"
	"time"

	config "github.com/anjiri1684/course_marketplace/configs"
	"github.com/anjiri1684/course_marketplace/handlers"
	"github.com/anjiri1684/course_marketplace/media"
	"github.com/anjiri1684/course_marketplace/middleware"
	"github.com/anjiri1684/course_marketplace/services"
	"github.com/anjiri1684/course_marketplace/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const devOrigin = "http://localhost:5173"

// Deps are the services the HTTP layer is wired to.
type Deps struct {
	Orders    *services.OrderService
	Progress  *services.ProgressService
	Media     media.Store
	Hub       *websocket.Hub
	UploadDir string
	JWTSecret []byte
}

func NewApp(cfg *config.AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:           "Course Marketplace",
		CaseSensitive:     true,
		EnablePrintRoutes: cfg.IsDevelopment(),
		BodyLimit:         handlers.MaxBulkUploads*handlers.MaxUploadSize + 1024*1024,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler:      errorHandler(cfg.IsDevelopment()),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(cfg.ClientURL),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	return app
}

// Register mounts every route and the trailing 404 handler.
func Register(app *fiber.App, deps Deps) {
	protected := middleware.ProtectedWith(deps.JWTSecret)

	PublicRoutes(app)
	AuthRoutes(app, protected)
	MediaRoutes(app, protected, handlers.NewMediaHandler(deps.Media, deps.UploadDir))
	InstructorRoutes(app, protected)
	StudentRoutes(app, protected, handlers.NewOrderHandler(deps.Orders), handlers.NewProgressHandler(deps.Progress))
	OrderStatusRoutes(app, deps.Hub, deps.Orders, deps.JWTSecret)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})
}

func allowedOrigins(clientURL string) string {
	if clientURL == "" || clientURL == devOrigin {
		return devOrigin
	}
	return strings.Join([]string{clientURL, devOrigin}, ", ")
}

func errorHandler(development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())

		body := fiber.Map{"success": false, "message": "Something went wrong"}
		if code != fiber.StatusInternalServerError {
			body["message"] = err.Error()
		}
		if development {
			body["error"] = err.Error()
		}
		return c.Status(code).JSON(body)
	}
}
