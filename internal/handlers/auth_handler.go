package handlers

import (
	"log/slog"

	"tokoshop/internal/middleware"
	"tokoshop/internal/models"
	"tokoshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
	}
}

// RegisterRoutes registers the authentication routes. auth guards the profile routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/me", auth, h.HandleMe)
	authRoutes.Put("/me", auth, h.HandleUpdateMe)
	authRoutes.Put("/me/password", auth, h.HandleChangePassword)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var user models.User
	if err := bind(c, h.validate, &user); err != nil {
		return respondError(c, "Registration failed", err)
	}
	user.ID = ""

	if err := h.authService.RegisterUser(c.UserContext(), &user); err != nil {
		return respondError(c, "Registration failed", err)
	}

	slog.InfoContext(c.UserContext(), "user registered", "user_id", user.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user.Sanitized(),
	})
}

// LoginRequest represents the request body for login. Either username or
// email identifies the account.
type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email,max=255"`
	Email    string `json:"email" validate:"omitempty,max=255"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "Authentication failed", err)
	}

	token, user, err := h.authService.LoginUser(c.UserContext(), req.identifier(), req.Password, c.IP())
	if err != nil {
		return respondError(c, "Authentication failed", err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// HandleMe returns the caller's profile.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.authService.GetProfile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "Could not load profile", err)
	}
	return c.JSON(user)
}

func (h *AuthHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var in services.ProfileUpdate
	if err := bind(c, h.validate, &in); err != nil {
		return respondError(c, "Could not update profile", err)
	}

	user, err := h.authService.UpdateProfile(c.UserContext(), middleware.UserID(c), in)
	if err != nil {
		return respondError(c, "Could not update profile", err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated",
		"user":    user,
	})
}

// ChangePasswordRequest is the body of PUT /auth/me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := bind(c, h.validate, &req); err != nil {
		return respondError(c, "Could not change password", err)
	}

	if err := h.authService.ChangePassword(c.UserContext(), middleware.UserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, "Could not change password", err)
	}
	return c.JSON(fiber.Map{"message": "Password changed"})
}
