package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// HealthHandler reports the state of the service and its dependencies.
type HealthHandler struct {
	service string
	checks  map[string]HealthCheck
}

func NewHealthHandler(service string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{service: service, checks: checks}
}

func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 200 when every dependency is up and 503 otherwise.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	status, code := "healthy", fiber.StatusOK
	deps := make(fiber.Map, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = fiber.Map{"status": "down", "error": err.Error()}
			status, code = "unhealthy", fiber.StatusServiceUnavailable
			continue
		}
		deps[name] = fiber.Map{"status": "up"}
	}

	return c.Status(code).JSON(fiber.Map{
		"status":       status,
		"service":      h.service,
		"dependencies": deps,
	})
}
