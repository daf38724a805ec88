package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=256"`
	Email    string `json:"email" validate:"required,email,max=256"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload for password changes.
type ChangePasswordRequest struct {
	Username        string `json:"username" validate:"required"`
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=72"`
}

// AssignRoleRequest payload for role assignment.
type AssignRoleRequest struct {
	Username string `json:"username" validate:"required"`
	Role     string `json:"role" validate:"required,max=256"`
}

// StatusResponse is the acknowledgement body used by most auth endpoints.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ProfileResponse is the account projection returned at login.
type ProfileResponse struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   ProfileResponse `json:"profile"`
}

// RolesResponse lists the roles held by an account.
type RolesResponse struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// SecureResponse is returned by the role-gated sample endpoints.
type SecureResponse struct {
	Message    string `json:"message"`
	RedirectTo string `json:"redirect_to"`
}
