package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anjiri1684/course_marketplace/middleware"
	"github.com/anjiri1684/course_marketplace/services"
	"github.com/anjiri1684/course_marketplace/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// OrderStatusSocket streams status changes of one order. The first frame must
// be {"type":"auth","token":...} carrying the buyer's access token.
func OrderStatusSocket(hub *websocket.Hub, orders *services.OrderService, secret []byte) func(*websocketcontrib.Conn) {
	return func(c *websocketcontrib.Conn) {
		orderID := c.Params("orderId")

		var msg authMessage
		if err := c.ReadJSON(&msg); err != nil || msg.Type != "auth" {
			log.Printf("WebSocket auth failed for order %s: %v", orderID, err)
			_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
			_ = c.Close()
			return
		}
		claims, err := parseToken(msg.Token, secret)
		if err != nil {
			_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
			_ = c.Close()
			return
		}

		order, err := orders.GetOrder(context.Background(), orderID)
		if err != nil || order.UserID != middleware.ClaimsUser(claims).ID {
			_ = c.WriteJSON(fiber.Map{"error": "Order cannot be found"})
			_ = c.Close()
			return
		}

		client := &websocket.Client{OrderID: orderID, Conn: c}
		hub.Register(client)
		defer hub.Unregister(client)

		// re-read after registering so a transition in between is not missed;
		// the snapshot goes through the hub, the only writer once registered
		if current, err := orders.GetOrder(context.Background(), orderID); err == nil {
			order = current
		}
		hub.Publish(order.ID, order.OrderStatus, order.PaymentStatus)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if !websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
					log.Printf("WebSocket read error for order %s: %v", orderID, err)
				}
				return
			}
		}
	}
}

// RequireUpgrade rejects plain HTTP requests on websocket routes.
func RequireUpgrade(c *fiber.Ctx) error {
	if !websocketcontrib.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

func parseToken(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
