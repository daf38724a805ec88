package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/identity-service/internal/domain"
)

// RoleRepository manages roles and account memberships.
type RoleRepository interface {
	Exists(ctx context.Context, name string) (bool, error)
	// Create returns ErrDuplicate when the role already exists.
	Create(ctx context.Context, name string) (*domain.Role, error)
	// AddToAccount is a no-op when the membership already exists and
	// returns ErrNotFound when the role or account does not.
	AddToAccount(ctx context.Context, accountID, roleName string) error
	// ListForAccount returns role names ordered by name.
	ListForAccount(ctx context.Context, accountID string) ([]string, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Exists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM roles WHERE normalized_name=$1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, domain.NormalizeName(name)).Scan(&exists); err != nil {
		return false, translate(err)
	}
	return exists, nil
}

func (r *roleRepository) Create(ctx context.Context, name string) (*domain.Role, error) {
	const query = `
        INSERT INTO roles (name, normalized_name)
        VALUES ($1, $2)
        RETURNING id::text, created_at`

	role := &domain.Role{Name: name, NormalizedName: domain.NormalizeName(name)}
	if err := r.pool.QueryRow(ctx, query, role.Name, role.NormalizedName).Scan(&role.ID, &role.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return role, nil
}

func (r *roleRepository) AddToAccount(ctx context.Context, accountID, roleName string) error {
	const lookup = `SELECT id::text FROM roles WHERE normalized_name=$1`
	const insert = `
        INSERT INTO account_roles (account_id, role_id)
        VALUES ($1, $2)
        ON CONFLICT (account_id, role_id) DO NOTHING`

	var roleID string
	if err := r.pool.QueryRow(ctx, lookup, domain.NormalizeName(roleName)).Scan(&roleID); err != nil {
		return translate(err)
	}
	_, err := r.pool.Exec(ctx, insert, accountID, roleID)
	return translate(err)
}

func (r *roleRepository) ListForAccount(ctx context.Context, accountID string) ([]string, error) {
	const query = `
        SELECT r.name
        FROM roles r
        JOIN account_roles ar ON ar.role_id = r.id
        WHERE ar.account_id=$1
        ORDER BY r.name`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	roles := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}
