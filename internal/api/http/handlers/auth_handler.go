package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/identity-service/internal/api/dto"
	"github.com/spec-kit/identity-service/internal/service"
	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

// AuthHandler exposes the account endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if _, err := h.auth.Register(c.UserContext(), req.Username, req.Email, req.Password); err != nil {
		return mapServiceError(err, "User creation failed!")
	}
	return c.Status(http.StatusOK).JSON(dto.StatusResponse{
		Status:  "Success",
		Message: "User registered successfully!",
	})
}

// ConfirmEmail handles GET /api/auth/confirm-email?userId=&token=.
func (h *AuthHandler) ConfirmEmail(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return apperrors.NewValidationError("userId is required", nil)
	}
	if err := h.auth.ConfirmEmail(c.UserContext(), userID, c.Query("token")); err != nil {
		return mapServiceError(err, "")
	}
	return c.JSON(dto.StatusResponse{Status: "Success", Message: "Email confirmed successfully!"})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return mapServiceError(err, "")
	}
	return c.JSON(dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Profile: dto.ProfileResponse{
			Username: result.Profile.Username,
			Email:    result.Profile.Email,
			Roles:    result.Profile.Roles,
		},
	})
}

// ChangePassword handles POST /api/auth/change-password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.UserContext(), req.Username, req.CurrentPassword, req.NewPassword); err != nil {
		return mapServiceError(err, "Password change failed!")
	}
	return c.JSON(dto.StatusResponse{Status: "Success", Message: "Password changed successfully!"})
}

// CheckRoles handles GET /api/auth/check-roles/:username.
func (h *AuthHandler) CheckRoles(c *fiber.Ctx) error {
	username := c.Params("username")
	roles, err := h.auth.CheckRoles(c.UserContext(), username)
	if err != nil {
		return mapServiceError(err, "")
	}
	return c.JSON(dto.RolesResponse{Username: username, Roles: roles})
}

// AssignRole handles POST /api/auth/assign-role.
func (h *AuthHandler) AssignRole(c *fiber.Ctx) error {
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.auth.AssignRole(c.UserContext(), req.Username, req.Role); err != nil {
		return mapServiceError(err, "")
	}
	return c.JSON(dto.StatusResponse{
		Status:  "Success",
		Message: fmt.Sprintf("Role %s assigned to user %s", req.Role, req.Username),
	})
}
