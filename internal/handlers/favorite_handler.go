package handlers

import (
	"tokoshop/internal/middleware"
	"tokoshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FavoriteHandler serves the caller's wishlist.
type FavoriteHandler struct {
	service  *services.FavoriteService
	validate *validator.Validate
}

func NewFavoriteHandler(service *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the favorite routes behind auth.
func (h *FavoriteHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	favoriteRoutes := router.Group("/favorites", auth)
	favoriteRoutes.Get("/", h.HandleList)
	favoriteRoutes.Post("/", h.HandleAdd)
	favoriteRoutes.Delete("/:productId", h.HandleRemove)
	favoriteRoutes.Get("/:productId/status", h.HandleStatus)
}

func (h *FavoriteHandler) HandleList(c *fiber.Ctx) error {
	favorites, err := h.service.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not retrieve favorites", err)
	}
	return c.JSON(fiber.Map{"data": favorites})
}

type addFavoriteRequest struct {
	ProductID string `json:"product_id" validate:"required,max=36"`
}

func (h *FavoriteHandler) HandleAdd(c *fiber.Ctx) error {
	var req addFavoriteRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "Could not add favorite", err)
	}

	favorite, err := h.service.Add(c.UserContext(), middleware.UserID(c), req.ProductID)
	if err != nil {
		return respondError(c, "Could not add favorite", err)
	}
	return c.Status(fiber.StatusCreated).JSON(favorite)
}

func (h *FavoriteHandler) HandleRemove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.UserContext(), middleware.UserID(c), c.Params("productId")); err != nil {
		return respondError(c, "Could not remove favorite", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *FavoriteHandler) HandleStatus(c *fiber.Ctx) error {
	favorited, err := h.service.IsFavorited(c.UserContext(), middleware.UserID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, "Could not check favorite", err)
	}
	return c.JSON(fiber.Map{"favorited": favorited})
}
