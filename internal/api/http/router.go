package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/http/handlers"
	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Secure *handlers.SecureHandler
	Gate   *auth.GateMiddleware

	// ProtectRoleAssignment puts assign-role behind the Admin role.
	ProtectRoleAssignment bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Gate.Require(domain.RoleAdmin), cfg.Health.Metrics)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Get("/confirm-email", cfg.Auth.ConfirmEmail)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/change-password", cfg.Auth.ChangePassword)
	authGroup.Get("/check-roles/:username", cfg.Auth.CheckRoles)
	if cfg.ProtectRoleAssignment {
		authGroup.Post("/assign-role", cfg.Gate.Require(domain.RoleAdmin), cfg.Auth.AssignRole)
	} else {
		authGroup.Post("/assign-role", cfg.Auth.AssignRole)
	}

	secure := app.Group("/api/secure")
	secure.Get("/admin-only", cfg.Gate.Require(domain.RoleAdmin), cfg.Secure.AdminOnly)
	secure.Get("/user-only", cfg.Gate.Require(domain.RoleUser), cfg.Secure.UserOnly)
	secure.Get("/admin-or-user", cfg.Gate.Require(domain.RoleAdmin, domain.RoleUser), cfg.Secure.AdminOrUser)
	secure.Get("/public", cfg.Gate.Public(), cfg.Secure.Public)
}
