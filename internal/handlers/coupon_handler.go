package handlers

import (
	"tokoshop/internal/models"
	"tokoshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CouponHandler serves coupon validation and administration.
type CouponHandler struct {
	service  *services.CouponService
	validate *validator.Validate
}

func NewCouponHandler(service *services.CouponService) *CouponHandler {
	return &CouponHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the customer facing routes behind auth.
func (h *CouponHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Post("/coupons/validate", auth, h.HandleValidate)
}

// RegisterAdminRoutes registers coupon CRUD on an admin-only router.
func (h *CouponHandler) RegisterAdminRoutes(router fiber.Router) {
	couponRoutes := router.Group("/coupons")
	couponRoutes.Get("/", h.HandleList)
	couponRoutes.Post("/", h.HandleCreate)
	couponRoutes.Get("/:id", h.HandleGet)
	couponRoutes.Put("/:id", h.HandleUpdate)
	couponRoutes.Delete("/:id", h.HandleDelete)
}

type validateCouponRequest struct {
	Code     string          `json:"code" validate:"required,max=40"`
	Subtotal decimal.Decimal `json:"subtotal" validate:"gt=0"`
}

// HandleValidate quotes a coupon. Rule violations return 200 with valid=false.
func (h *CouponHandler) HandleValidate(c *fiber.Ctx) error {
	var req validateCouponRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "Could not validate coupon", err)
	}

	quote, err := h.service.Quote(c.UserContext(), req.Code, req.Subtotal)
	if err != nil {
		return respondError(c, "Could not validate coupon", err)
	}
	return c.JSON(quote)
}

func (h *CouponHandler) HandleList(c *fiber.Ctx) error {
	coupons, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve coupons", err)
	}
	return c.JSON(fiber.Map{"data": coupons})
}

func (h *CouponHandler) HandleCreate(c *fiber.Ctx) error {
	var coupon models.Coupon
	if err := bind(c, h.validate, &coupon); err != nil {
		return respondError(c, "Could not create coupon", err)
	}

	if err := h.service.Create(c.UserContext(), &coupon); err != nil {
		return respondError(c, "Could not create coupon", err)
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

func (h *CouponHandler) HandleGet(c *fiber.Ctx) error {
	coupon, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve coupon", err)
	}
	return c.JSON(coupon)
}

func (h *CouponHandler) HandleUpdate(c *fiber.Ctx) error {
	var coupon models.Coupon
	if err := bind(c, h.validate, &coupon); err != nil {
		return respondError(c, "Could not update coupon", err)
	}
	coupon.ID = c.Params("id")

	updated, err := h.service.Update(c.UserContext(), &coupon)
	if err != nil {
		return respondError(c, "Could not update coupon", err)
	}
	return c.JSON(updated)
}

func (h *CouponHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, "Could not delete coupon", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
