package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EmailConfirmation is a single-use token proving control of an email address.
type EmailConfirmation struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// ConfirmationRepository manages email confirmation token persistence.
type ConfirmationRepository interface {
	Create(ctx context.Context, confirmation *EmailConfirmation) error
	GetByToken(ctx context.Context, token string) (*EmailConfirmation, error)
	MarkUsed(ctx context.Context, id string) error
}

type confirmationRepository struct {
	pool *pgxpool.Pool
}

// NewConfirmationRepository constructs repository.
func NewConfirmationRepository(pool *pgxpool.Pool) ConfirmationRepository {
	return &confirmationRepository{pool: pool}
}

func (r *confirmationRepository) Create(ctx context.Context, confirmation *EmailConfirmation) error {
	const query = `
        INSERT INTO email_confirmations (account_id, token, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id::text, created_at`
	err := r.pool.QueryRow(ctx, query,
		confirmation.AccountID,
		confirmation.Token,
		confirmation.ExpiresAt,
	).Scan(&confirmation.ID, &confirmation.CreatedAt)
	return translate(err)
}

func (r *confirmationRepository) GetByToken(ctx context.Context, token string) (*EmailConfirmation, error) {
	const query = `
        SELECT id::text, account_id::text, token, expires_at, used_at, created_at
        FROM email_confirmations WHERE token=$1`
	var confirmation EmailConfirmation
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&confirmation.ID,
		&confirmation.AccountID,
		&confirmation.Token,
		&confirmation.ExpiresAt,
		&confirmation.UsedAt,
		&confirmation.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &confirmation, nil
}

func (r *confirmationRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `
        UPDATE email_confirmations SET used_at=NOW()
        WHERE id=$1 AND used_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
