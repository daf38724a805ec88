package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered          EventType = "account_registered"
	EventEmailConfirmationRequested EventType = "email_confirmation_requested"
	EventEmailConfirmed             EventType = "email_confirmed"
	EventLoginSucceeded             EventType = "login_succeeded"
	EventLoginFailed                EventType = "login_failed"
	EventPasswordChanged            EventType = "password_changed"
	EventRoleAssigned               EventType = "role_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID string      `json:"account_id,omitempty"`
	Username  string      `json:"username"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
	DefaultRole    string `json:"default_role"`
}

// EmailConfirmationRequestedPayload carries the token the mail stub would send.
type EmailConfirmationRequestedPayload struct {
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginSucceededPayload payload.
type LoginSucceededPayload struct {
	TokenID   string    `json:"token_id"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginFailedPayload payload. Reason is for operators only.
type LoginFailedPayload struct {
	Reason string `json:"reason"`
}

// RoleAssignedPayload payload.
type RoleAssignedPayload struct {
	Role        string `json:"role"`
	RoleCreated bool   `json:"role_created"`
}
