package routes

import (
	"github.com/anjiri1684/course_marketplace/handlers"
	"github.com/anjiri1684/course_marketplace/services"
	"github.com/anjiri1684/course_marketplace/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func OrderStatusRoutes(app *fiber.App, hub *websocket.Hub, orders *services.OrderService, secret []byte) {
	if hub == nil {
		return
	}
	ws := app.Group("/ws", handlers.RequireUpgrade)
	ws.Get("/orders/:orderId", websocketcontrib.New(handlers.OrderStatusSocket(hub, orders, secret)))
}
