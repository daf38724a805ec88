package domain

import (
	"strings"
	"time"
)

// Account is the stored record for a registered user.
type Account struct {
	ID                 string
	Username           string
	NormalizedUsername string
	Email              string
	NormalizedEmail    string
	EmailConfirmed     bool
	PasswordHash       string
	SecurityStamp      string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Identity is the read-only view of an account handed to token issuance.
type Identity struct {
	ID             string
	Username       string
	Email          string
	EmailConfirmed bool
}

// Identity projects the account into its identity view.
func (a *Account) Identity() Identity {
	return Identity{
		ID:             a.ID,
		Username:       a.Username,
		Email:          a.Email,
		EmailConfirmed: a.EmailConfirmed,
	}
}

// NormalizeName returns the lookup key used for usernames, emails and role names.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
