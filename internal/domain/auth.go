package domain

import "time"

// Well-known role names. The set is open; other names are created on first assignment.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// DefaultRoles are seeded at startup and by migrations.
var DefaultRoles = []string{RoleAdmin, RoleUser}

// Role is a named group an account can belong to.
type Role struct {
	ID             string
	Name           string
	NormalizedName string
	CreatedAt      time.Time
}
