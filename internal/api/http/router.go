package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itsd-platform/helpdesk-service/internal/api/http/handlers"
	"github.com/itsd-platform/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Everything except health probes and
// the auth endpoints sits behind the bearer-token middleware. Transition
// permissions are not enforced here: the workflow validator owns them.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	protected := api.Group("", cfg.AuthMiddleware.Handle)

	tickets := protected.Group("/tickets")
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/transitions", cfg.Tickets.TransitionTicket)
	tickets.Get("/:id/history", cfg.Tickets.GetHistory)

	users := protected.Group("/users")
	users.Get("", cfg.Users.ListUsers)
	users.Get("/:id", cfg.Users.GetUser)

	dashboard := protected.Group("/dashboard")
	dashboard.Get("/kpis", cfg.Dashboard.KPIs)
	dashboard.Get("/charts", cfg.Dashboard.Charts)
}
