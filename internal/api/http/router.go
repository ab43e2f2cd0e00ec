package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/ticketing/internal/api/http/handlers"
	"github.com/helpdesk-kit/ticketing/internal/auth"
	"github.com/helpdesk-kit/ticketing/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/signin", cfg.Auth.SignIn)
	authGroup.Post("/signup", cfg.Auth.SignUp)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	// /search must precede /:id or Fiber matches it as a ticket id.
	tickets.Get("/search", cfg.Tickets.SearchTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id/status", auth.RequireRole(domain.RoleSupportAgent), cfg.Tickets.UpdateStatus)
	tickets.Put("/:id/assign", auth.RequireRole(domain.RoleSupportAgent), cfg.Tickets.Assign)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/rate", cfg.Tickets.Rate)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/users", cfg.Admin.CreateUser)
	admin.Get("/users/support-agents", cfg.Admin.SupportAgents)
	admin.Put("/users/:id", cfg.Admin.UpdateUser)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)
	admin.Get("/tickets", cfg.Admin.AllTickets)
	admin.Put("/tickets/:id/force-status", cfg.Admin.ForceStatus)
	admin.Put("/tickets/:id/force-assign", cfg.Admin.ForceAssign)
	admin.Delete("/tickets/:id", cfg.Admin.DeleteTicket)
	admin.Get("/stats", cfg.Admin.Stats)
}
