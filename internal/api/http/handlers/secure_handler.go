package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/domain"
	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

// SecureHandler serves the role-gated sample endpoints. Gating happens in the
// router; these handlers only shape the answer.
type SecureHandler struct{}

// NewSecureHandler constructs handler.
func NewSecureHandler() *SecureHandler {
	return &SecureHandler{}
}

// AdminOnly handles GET /api/secure/admin-only.
func (h *SecureHandler) AdminOnly(c *fiber.Ctx) error {
	return c.JSON(dto.SecureResponse{Message: "Welcome, Admin!", RedirectTo: "/admin/dashboard"})
}

// UserOnly handles GET /api/secure/user-only.
func (h *SecureHandler) UserOnly(c *fiber.Ctx) error {
	return c.JSON(dto.SecureResponse{Message: "Welcome, User!", RedirectTo: "/user/profile"})
}

// AdminOrUser handles GET /api/secure/admin-or-user. Admins get the admin redirect.
func (h *SecureHandler) AdminOrUser(c *fiber.Ctx) error {
	grant, ok := auth.GrantFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(nil)
	}
	switch {
	case grant.Roles.Has(domain.RoleAdmin):
		return c.JSON(dto.SecureResponse{Message: "Welcome back, Admin!", RedirectTo: "/admin/dashboard"})
	case grant.Roles.Has(domain.RoleUser):
		return c.JSON(dto.SecureResponse{Message: "Welcome back, User!", RedirectTo: "/user/profile"})
	default:
		return apperrors.NewUnauthorized(nil)
	}
}

// Public handles GET /api/secure/public.
func (h *SecureHandler) Public(c *fiber.Ctx) error {
	return c.JSON(dto.SecureResponse{Message: "This is a public endpoint.", RedirectTo: "/home"})
}
