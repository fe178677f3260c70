package handlers

import (
	"fmt"

	"tokoshop/internal/models"
	"tokoshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the catalog routes. Reads are public; writes run
// behind the given guards.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/categories", h.HandleGetCategories)
	productRoutes.Get("/:id", h.HandleGetProductByID)

	productRoutes.Post("/", guarded(guards, h.HandleCreateProduct)...)
	productRoutes.Put("/:id", guarded(guards, h.HandleUpdateProduct)...)
	productRoutes.Patch("/:id/stock", guarded(guards, h.HandleSetStock)...)
	productRoutes.Delete("/:id", guarded(guards, h.HandleDeleteProduct)...)
}

// RegisterAdminRoutes exposes the unfiltered catalog, inactive products included.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/products", h.HandleAdminListProducts)
}

func guarded(guards []fiber.Handler, h fiber.Handler) []fiber.Handler {
	return append(append([]fiber.Handler{}, guards...), h)
}

func parsePrice(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &badRequestError{message: fmt.Sprintf("Invalid %s", key), err: err}
	}
	return &d, nil
}

func productFilter(c *fiber.Ctx) (models.ProductFilter, error) {
	minPrice, err := parsePrice(c, "min_price")
	if err != nil {
		return models.ProductFilter{}, err
	}
	maxPrice, err := parsePrice(c, "max_price")
	if err != nil {
		return models.ProductFilter{}, err
	}
	search := c.Query("search")
	if search == "" {
		search = c.Query("q")
	}
	return models.ProductFilter{
		Category:    c.Query("category"),
		Search:      search,
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		InStockOnly: c.QueryBool("in_stock"),
		Sort:        c.Query("sort"),
		Page:        pageFromQuery(c),
	}, nil
}

// HandleGetProducts lists active products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	f, err := productFilter(c)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	f.ActiveOnly = true

	products, err := h.service.ListProducts(c.UserContext(), f)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleAdminListProducts(c *fiber.Ctx) error {
	f, err := productFilter(c)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}

	products, err := h.service.ListProducts(c.UserContext(), f)
	if err != nil {
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return respondError(c, "Could not retrieve categories", err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := bind(c, h.validate, &product); err != nil {
		return respondError(c, "Could not create product", err)
	}

	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the editable fields of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := bind(c, h.validate, &product); err != nil {
		return respondError(c, "Could not update product", err)
	}
	product.ID = c.Params("id")

	if err := h.service.UpdateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, "Could not update product", err)
	}
	return c.JSON(product)
}

type stockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}

// HandleSetStock overwrites the stock level of a product.
func (h *ProductHandler) HandleSetStock(c *fiber.Ctx) error {
	var req stockRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "Could not update stock", err)
	}

	id := c.Params("id")
	if err := h.service.SetStock(c.UserContext(), id, *req.Stock); err != nil {
		return respondError(c, "Could not update stock", err)
	}
	return c.JSON(fiber.Map{
		"message": "Stock updated",
		"id":      id,
		"stock":   *req.Stock,
	})
}

// HandleDeleteProduct soft-deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
