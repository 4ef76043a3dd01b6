package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/http/handlers"
	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	Orders         *handlers.OrdersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The identity middleware runs on every
// /api route but never rejects by itself; the per-route guards decide.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	users := api.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Get("/", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)
	users.Get("/:id", auth.RequireAuthenticated(), cfg.Users.Get)
	users.Put("/:id", auth.RequireAuthenticated(), cfg.Users.Update)
	users.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Users.Delete)

	products := api.Group("/products")
	products.Post("/", auth.RequireRole(domain.RoleAdmin), cfg.Products.Create)
	products.Get("/", auth.RequireAuthenticated(), cfg.Products.List)
	products.Get("/:id", auth.RequireAuthenticated(), cfg.Products.Get)
	products.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Products.Update)
	products.Delete("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Products.Delete)

	orders := api.Group("/orders", auth.RequireAuthenticated())
	orders.Post("/", cfg.Orders.Create)
	orders.Get("/", cfg.Orders.List)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Patch("/:id/status", auth.RequireRole(domain.RoleAdmin), cfg.Orders.UpdateStatus)
}
