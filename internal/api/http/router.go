package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fieldops/internal/api/http/handlers"
	"github.com/spec-kit/fieldops/internal/auth"
	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/navigation"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Navigation     *handlers.NavigationHandler
	Identities     *handlers.IdentitiesHandler
	Leads          *handlers.LeadsHandler
	Customers      *handlers.CustomersHandler
	Settings       *handlers.SettingsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/session", cfg.AuthMiddleware.Optional, cfg.Auth.Session)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	app.Get("/navigation/:group", cfg.AuthMiddleware.Optional, cfg.Navigation.Decide)

	leads := app.Group("/leads", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleSalesman, domain.RoleCallOperator, domain.RoleTeamLead, domain.RoleSuperAdmin))
	leads.Get("", cfg.Leads.List)
	leads.Post("", cfg.Leads.Create)
	leads.Get("/:id", cfg.Leads.Get)
	leads.Post("/:id/status", cfg.Leads.UpdateStatus)
	leads.Post("/:id/convert", cfg.Leads.Convert)

	app.Get("/customers", cfg.AuthMiddleware.Handle, cfg.Customers.List)
	app.Get("/summary", cfg.AuthMiddleware.Handle, cfg.Customers.Summary)

	me := app.Group("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	me.Get("/settings", cfg.Settings.Get)
	me.Put("/settings", cfg.Settings.Update)

	admin := app.Group("/admin", cfg.AuthMiddleware.Optional, auth.GroupGuard(navigation.GroupAdmin))
	admin.Get("/identities", cfg.Identities.List)
	admin.Post("/identities", cfg.Identities.Create)
	admin.Post("/identities/:id/active", cfg.Identities.SetActive)
	admin.Post("/customers/:id/technician", cfg.Customers.AssignTechnician)
}
