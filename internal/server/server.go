package server

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"tokoshop/internal/handlers"
	"tokoshop/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServiceAll mounts every route group in one process.
const ServiceAll = "all"

// Route groups a service process can serve.
const (
	groupAuth       = "auth"
	groupProducts   = "products"
	groupOrders     = "orders"
	groupOrderAdmin = "order-admin"
	groupFavorites  = "favorites"
	groupAdmin      = "admin"
	groupContact    = "contact"
)

var serviceGroups = map[string][]string{
	"auth":      {groupAuth},
	"product":   {groupProducts},
	"order":     {groupOrders, groupOrderAdmin},
	"favorites": {groupFavorites},
	"admin":     {groupAdmin, groupContact, groupOrderAdmin},
}

// ServiceNames lists the values accepted for Options.Service.
func ServiceNames() []string {
	names := make([]string, 0, len(serviceGroups)+1)
	for name := range serviceGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	return append(names, ServiceAll)
}

func groupsFor(service string) (map[string]bool, error) {
	groups := map[string]bool{}
	if service == ServiceAll {
		for _, gs := range serviceGroups {
			for _, g := range gs {
				groups[g] = true
			}
		}
		return groups, nil
	}
	gs, ok := serviceGroups[service]
	if !ok {
		return nil, fmt.Errorf("unknown service %q (must be one of %s)", service, strings.Join(ServiceNames(), ", "))
	}
	for _, g := range gs {
		groups[g] = true
	}
	return groups, nil
}

// CheckService rejects unknown service names.
func CheckService(service string) error {
	_, err := groupsFor(service)
	return err
}

// NeedsDocumentStore reports whether service serves routes backed by MongoDB.
func NeedsDocumentStore(service string) bool {
	groups, err := groupsFor(service)
	if err != nil {
		return false
	}
	return groups[groupFavorites] || groups[groupAdmin] || groups[groupContact]
}

// Options configures the HTTP surface of a service process.
type Options struct {
	Service     string
	CORSOrigins string
	Health      map[string]handlers.HealthCheck
}

// New builds the fiber app for opts.Service on top of svc.
func New(opts Options, svc Services) (*fiber.App, error) {
	groups, err := groupsFor(opts.Service)
	if err != nil {
		return nil, err
	}
	if (groups[groupFavorites] && svc.Favorites == nil) || (groups[groupContact] && svc.Contacts == nil) {
		return nil, fmt.Errorf("service %q needs the document store", opts.Service)
	}

	app := fiber.New(fiber.Config{
		AppName:      "tokoshop-" + opts.Service,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + handlers.IdempotencyKeyHeader,
	}))
	app.Use(middleware.Metrics())
	app.Use(middleware.Tracing("tokoshop-" + opts.Service))

	handlers.NewHealthHandler(opts.Service, opts.Health).RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthRequired(svc.Auth)

	var admin fiber.Router
	adminRouter := func() fiber.Router {
		if admin == nil {
			admin = apiV1.Group("/admin", auth, middleware.AdminOnly())
		}
		return admin
	}

	if groups[groupAuth] {
		handlers.NewAuthHandler(svc.Auth).RegisterRoutes(apiV1, auth)
	}
	if groups[groupProducts] {
		h := handlers.NewProductHandler(svc.Products)
		h.RegisterRoutes(apiV1, auth, middleware.AdminOnly())
		h.RegisterAdminRoutes(adminRouter())
	}
	if groups[groupOrders] {
		handlers.NewOrderHandler(svc.Orders).RegisterRoutes(apiV1, auth)
		handlers.NewCouponHandler(svc.Coupons).RegisterRoutes(apiV1, auth)
	}
	if groups[groupOrderAdmin] {
		handlers.NewOrderHandler(svc.Orders).RegisterAdminRoutes(adminRouter())
		handlers.NewCouponHandler(svc.Coupons).RegisterAdminRoutes(adminRouter())
	}
	if groups[groupFavorites] {
		handlers.NewFavoriteHandler(svc.Favorites).RegisterRoutes(apiV1, auth)
	}
	if groups[groupContact] {
		h := handlers.NewContactHandler(svc.Contacts)
		h.RegisterRoutes(apiV1)
		h.RegisterAdminRoutes(adminRouter())
	}
	if groups[groupAdmin] {
		handlers.NewAdminHandler(svc.Admin).RegisterRoutes(adminRouter())
	}

	return app, nil
}

// errorHandler renders errors that escape the handlers, such as unknown routes
// and recovered panics, in the same JSON shape the handlers use.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "unhandled error",
			"request_id", c.Locals("requestid"),
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}
