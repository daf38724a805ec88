package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/identity-service/internal/domain"
)

// AccountRepository defines persistence access for accounts.
// Lookups by name use the normalized form, so they are case-insensitive.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id::text, username, normalized_username, email, normalized_email,
        email_confirmed, password_hash, security_stamp, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (username, normalized_username, email, normalized_email,
                              email_confirmed, password_hash, security_stamp)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id::text, created_at, updated_at`

	account.NormalizedUsername = domain.NormalizeName(account.Username)
	account.NormalizedEmail = domain.NormalizeName(account.Email)
	err := r.pool.QueryRow(ctx, query,
		account.Username,
		account.NormalizedUsername,
		account.Email,
		account.NormalizedEmail,
		account.EmailConfirmed,
		account.PasswordHash,
		account.SecurityStamp,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	return translate(err)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts
        SET email=$1, normalized_email=$2, email_confirmed=$3, password_hash=$4,
            security_stamp=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`

	account.NormalizedEmail = domain.NormalizeName(account.Email)
	err := r.pool.QueryRow(ctx, query,
		account.Email,
		account.NormalizedEmail,
		account.EmailConfirmed,
		account.PasswordHash,
		account.SecurityStamp,
		account.ID,
	).Scan(&account.UpdatedAt)
	return translate(err)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return r.scanOne(ctx, query, id)
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE normalized_username=$1`
	return r.scanOne(ctx, query, domain.NormalizeName(username))
}

func (r *accountRepository) scanOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Username,
		&account.NormalizedUsername,
		&account.Email,
		&account.NormalizedEmail,
		&account.EmailConfirmed,
		&account.PasswordHash,
		&account.SecurityStamp,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &account, nil
}
