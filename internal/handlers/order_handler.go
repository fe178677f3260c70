package handlers

import (
	"fmt"

	"tokoshop/internal/middleware"
	"tokoshop/internal/models"
	"tokoshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// IdempotencyKeyHeader lets clients retry an order placement safely.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 100

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the customer order routes behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// RegisterAdminRoutes registers order management on an admin-only router.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Patch("/:id/payment", h.HandleUpdatePaymentStatus)
}

func actor(c *fiber.Ctx) services.Actor {
	return services.Actor{UserID: middleware.UserID(c), Admin: middleware.IsAdmin(c)}
}

// HandleCreateOrder places an order for the caller. A replayed Idempotency-Key
// returns the original order with 200.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "Could not create order", err)
	}

	idemKey := c.Get(IdempotencyKeyHeader)
	if len(idemKey) > maxIdempotencyKeyLen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("%s must be at most %d characters", IdempotencyKeyHeader, maxIdempotencyKeyLen),
		})
	}

	order, replayed, err := h.service.PlaceOrder(c.UserContext(), middleware.UserID(c), req, idemKey)
	if err != nil {
		return respondError(c, "Could not create order", err)
	}
	if replayed {
		return c.JSON(order)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetMyOrders lists the caller's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListMyOrders(c.UserContext(), middleware.UserID(c), pageFromQuery(c))
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not cancel order", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order cancelled",
		"order":   order,
	})
}

// HandleListOrders lists all orders, optionally by status and user.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), models.OrderFilter{
		Status: c.Query("status"),
		UserID: c.Query("user_id"),
		Page:   pageFromQuery(c),
	})
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "Could not update order status", err)
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), actor(c), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, "Could not update order status", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", order.ID, order.Status),
		"order":   order,
	})
}

func (h *OrderHandler) HandleUpdatePaymentStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "Could not update payment status", err)
	}

	order, err := h.service.UpdatePaymentStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, "Could not update payment status", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s payment status updated to %s", order.ID, order.PaymentStatus),
		"order":   order,
	})
}
