package middleware

import (
	"log/slog"
	"strings"

	"tokoshop/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

// TokenValidator is satisfied by services.AuthService.
type TokenValidator interface {
	ValidateToken(tokenString string) (jwt.MapClaims, error)
}

const (
	localUserID   = "user_id"
	localUsername = "username"
	localRole     = "role"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			slog.DebugContext(c.UserContext(), "jwt validation failed", "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)

		c.Locals(localUserID, userID)
		c.Locals(localUsername, username)
		c.Locals(localRole, role)

		return c.Next()
	}
}

// AdminOnly rejects callers without the admin role. It must run after AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdmin(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Admin access required",
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's id.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localUserID).(string)
	return id
}

func Username(c *fiber.Ctx) string {
	name, _ := c.Locals(localUsername).(string)
	return name
}

func IsAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals(localRole).(string)
	return role == models.RoleAdmin
}
