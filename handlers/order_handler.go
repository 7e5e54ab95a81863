package handlers

import (
	"github.com/anjiri1684/course_marketplace/middleware"
	"github.com/anjiri1684/course_marketplace/services"
	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var in services.CreateOrderInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Cannot parse JSON", nil)
	}

	created, err := h.orders.CreateOrder(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    created,
	})
}

func (h *OrderHandler) CapturePaymentAndFinalizeOrder(c *fiber.Ctx) error {
	var in services.CaptureInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Cannot parse JSON", nil)
	}

	captured, err := h.orders.CaptureOrder(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment successful",
		"data":    captured,
	})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetOrder(c.UserContext(), c.Params("orderId"))
	if err != nil {
		return respondServiceError(c, err)
	}

	caller, _ := middleware.CurrentUser(c)
	if order.UserID != caller.ID {
		return respondError(c, fiber.StatusForbidden, "You do not have access to this order", nil)
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}
