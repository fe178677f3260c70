package handlers

import (
	"tokoshop/internal/models"
	"tokoshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ContactHandler accepts contact-form messages and lets admins triage them.
type ContactHandler struct {
	service  *services.ContactService
	validate *validator.Validate
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the public contact form.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/contact", h.HandleSubmit)
}

// RegisterAdminRoutes registers the inbox on an admin-only router.
func (h *ContactHandler) RegisterAdminRoutes(router fiber.Router) {
	messageRoutes := router.Group("/messages")
	messageRoutes.Get("/", h.HandleList)
	messageRoutes.Patch("/:id/read", h.HandleMarkRead)
	messageRoutes.Delete("/:id", h.HandleDelete)
}

func (h *ContactHandler) HandleSubmit(c *fiber.Ctx) error {
	var msg models.ContactMessage
	if err := bind(c, h.validate, &msg); err != nil {
		return respondError(c, "Could not send message", err)
	}

	if err := h.service.Submit(c.UserContext(), &msg); err != nil {
		return respondError(c, "Could not send message", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message received",
		"id":      msg.ID.Hex(),
	})
}

func (h *ContactHandler) HandleList(c *fiber.Ctx) error {
	messages, err := h.service.List(c.UserContext(), c.QueryBool("unread"), pageFromQuery(c))
	if err != nil {
		return respondError(c, "Could not retrieve messages", err)
	}
	return c.JSON(messages)
}

func (h *ContactHandler) HandleMarkRead(c *fiber.Ctx) error {
	if err := h.service.MarkRead(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, "Could not update message", err)
	}
	return c.JSON(fiber.Map{"message": "Message marked as read"})
}

func (h *ContactHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, "Could not delete message", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
