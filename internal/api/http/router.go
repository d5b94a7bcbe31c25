package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nexis/campus-services/internal/api/http/handlers"
	"github.com/nexis/campus-services/internal/auth"
	"github.com/nexis/campus-services/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Students       *handlers.StudentsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires the auth service HTTP routes. The gateway enforces
// route policies in front of these, but each route still re-checks
// authentication and role locally.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/debug/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/me", cfg.Auth.Me)
	protected.Put("/profile", cfg.Auth.UpdateProfile)

	// paths mirror the gateway policy fragments
	students := app.Group("/api/students", cfg.AuthMiddleware.Handle)
	students.Post("/create", auth.RequireRole(domain.RoleAdmin), cfg.Students.Create)
	students.Get("/list", auth.RequireRole(domain.RoleAdmin, domain.RoleProfessor), cfg.Students.List)
	students.Get("/get/:id", auth.RequireRole(), cfg.Students.Get)
	students.Put("/update/:id", auth.RequireRole(domain.RoleAdmin), cfg.Students.Update)
	students.Delete("/delete/:id", auth.RequireRole(domain.RoleAdmin), cfg.Students.Delete)
}
