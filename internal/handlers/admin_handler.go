package handlers

import (
	"tokoshop/internal/middleware"
	"tokoshop/internal/models"
	"tokoshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the dashboard, reports and user management.
type AdminHandler struct {
	service  *services.AdminService
	validate *validator.Validate
}

func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the admin routes on an admin-only router.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleDashboard)
	router.Get("/reports/sales", h.HandleSalesReport)

	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleListUsers)
	userRoutes.Patch("/:id/role", h.HandleSetRole)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

func (h *AdminHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return respondError(c, "Could not load dashboard", err)
	}
	return c.JSON(dashboard)
}

// HandleSalesReport aggregates orders between ?from and ?to, grouped by day or month.
func (h *AdminHandler) HandleSalesReport(c *fiber.Ctx) error {
	from, err := services.ParseReportDate(c.Query("from"))
	if err != nil {
		return respondError(c, "Could not build report", err)
	}
	to, err := services.ParseReportDate(c.Query("to"))
	if err != nil {
		return respondError(c, "Could not build report", err)
	}

	rows, err := h.service.SalesReport(c.UserContext(), models.SalesFilter{
		From:    from,
		To:      to,
		Status:  c.Query("status"),
		GroupBy: c.Query("group_by"),
	})
	if err != nil {
		return respondError(c, "Could not build report", err)
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *AdminHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return respondError(c, "Could not retrieve users", err)
	}
	return c.JSON(users)
}

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=customer admin"`
}

func (h *AdminHandler) HandleSetRole(c *fiber.Ctx) error {
	var req roleRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "Could not change role", err)
	}

	user, err := h.service.SetUserRole(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Role)
	if err != nil {
		return respondError(c, "Could not change role", err)
	}
	return c.JSON(user)
}

func (h *AdminHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, "Could not delete user", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
