package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Stores groups the repositories the auth workflows need.
type Stores struct {
	Accounts      AccountRepository
	Roles         RoleRepository
	Confirmations ConfirmationRepository
}

// NewStores returns Postgres-backed repositories, or an in-memory set when pool is nil.
func NewStores(pool *pgxpool.Pool) Stores {
	if pool == nil {
		mem := NewMemoryStore()
		return Stores{Accounts: mem.Accounts(), Roles: mem.Roles(), Confirmations: mem.Confirmations()}
	}
	return Stores{
		Accounts:      NewAccountRepository(pool),
		Roles:         NewRoleRepository(pool),
		Confirmations: NewConfirmationRepository(pool),
	}
}
