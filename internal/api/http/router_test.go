package http

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/helpdesk-kit/ticketing/internal/api/http/handlers"
	"github.com/helpdesk-kit/ticketing/internal/auth"
)

// The route table is the wire contract consumed by external clients;
// path drift breaks them silently, so it is pinned here.
func TestRegisterRoutesWireContract(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app, RouteConfig{
		Health:         &handlers.HealthHandler{},
		Auth:           &handlers.AuthHandler{},
		Tickets:        &handlers.TicketsHandler{},
		Admin:          &handlers.AdminHandler{},
		AuthMiddleware: &auth.AuthMiddleware{},
	})

	registered := map[string]bool{}
	for _, routes := range app.Stack() {
		for _, route := range routes {
			registered[route.Method+" "+route.Path] = true
		}
	}

	for _, want := range []string{
		"GET /health/live",
		"GET /health/ready",
		"POST /auth/signin",
		"POST /auth/signup",
		"POST /tickets/",
		"GET /tickets/",
		"GET /tickets/search",
		"GET /tickets/:id",
		"PUT /tickets/:id/status",
		"PUT /tickets/:id/assign",
		"POST /tickets/:id/comments",
		"GET /tickets/:id/comments",
		"POST /tickets/:id/rate",
		"GET /admin/users",
		"POST /admin/users",
		"GET /admin/users/support-agents",
		"PUT /admin/users/:id",
		"DELETE /admin/users/:id",
		"GET /admin/tickets",
		"PUT /admin/tickets/:id/force-status",
		"PUT /admin/tickets/:id/force-assign",
		"DELETE /admin/tickets/:id",
		"GET /admin/stats",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}
