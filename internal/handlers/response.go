package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"tokoshop/internal/models"
	"tokoshop/internal/repositories"
	"tokoshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// newValidator reports fields by their JSON names and checks decimals as numbers.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.fields))
}

type badRequestError struct {
	message string
	err     error
}

func (e *badRequestError) Error() string { return e.message + ": " + e.err.Error() }

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, v *validator.Validate, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return &badRequestError{message: "Invalid request body", err: err}
	}
	return check(v, dst)
}

func check(v *validator.Validate, dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &validationError{fields: errorMessages}
}

var statusByError = []struct {
	err    error
	status int
}{
	{repositories.ErrNotFound, fiber.StatusNotFound},
	{repositories.ErrDuplicate, fiber.StatusConflict},
	{services.ErrUsernameTaken, fiber.StatusConflict},
	{services.ErrEmailTaken, fiber.StatusConflict},
	{services.ErrAlreadyFavorited, fiber.StatusConflict},
	{services.ErrInsufficientStock, fiber.StatusConflict},
	{services.ErrDuplicateRequest, fiber.StatusConflict},
	{services.ErrStatusConflict, fiber.StatusConflict},
	{services.ErrCouponExhausted, fiber.StatusConflict},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{services.ErrForbidden, fiber.StatusForbidden},
	{services.ErrSelfAction, fiber.StatusForbidden},
	{services.ErrRateLimited, fiber.StatusTooManyRequests},
	{services.ErrInvalidTransition, fiber.StatusUnprocessableEntity},
	{services.ErrInvalidInput, fiber.StatusBadRequest},
	{services.ErrInvalidProduct, fiber.StatusBadRequest},
	{services.ErrEmptyOrder, fiber.StatusBadRequest},
	{services.ErrInvalidQuantity, fiber.StatusBadRequest},
	{services.ErrTooManyItems, fiber.StatusBadRequest},
	{services.ErrInvalidStatus, fiber.StatusBadRequest},
	{services.ErrInvalidCoupon, fiber.StatusBadRequest},
	{services.ErrCouponExpired, fiber.StatusBadRequest},
	{services.ErrCouponMinimum, fiber.StatusBadRequest},
}

// respondError writes err as JSON with the status its sentinel maps to.
func respondError(c *fiber.Ctx, message string, err error) error {
	var ve *validationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  ve.fields,
		})
	}
	var br *badRequestError
	if errors.As(err, &br) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": br.message,
			"error":   br.err.Error(),
		})
	}

	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(fiber.Map{
				"message": message,
				"error":   err.Error(),
			})
		}
	}

	slog.ErrorContext(c.UserContext(), message,
		"request_id", c.Locals("requestid"),
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   "internal server error",
	})
}

func pageFromQuery(c *fiber.Ctx) models.Page {
	return models.Page{
		Number: c.QueryInt("page", 1),
		Size:   c.QueryInt("page_size", models.DefaultPageSize),
	}
}
