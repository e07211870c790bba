package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/event-ticketing/internal/persistence"
)

// PasswordResetToken is a pending password reset mailed to an account.
type PasswordResetToken struct {
	ID        string
	AccountID string
	Token     string
	Code      string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// PasswordResetRepository manages password reset token persistence.
type PasswordResetRepository interface {
	Create(ctx context.Context, token *PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*PasswordResetToken, error)
	// MarkUsed consumes the token once; false means it was already used.
	MarkUsed(ctx context.Context, id string) (bool, error)
}

type passwordResetRepository struct {
	db persistence.DBTX
}

// NewPasswordResetRepository constructs repository.
func NewPasswordResetRepository(db persistence.DBTX) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, token *PasswordResetToken) error {
	const query = `
        INSERT INTO password_reset_tokens (id, account_id, token, code, expires_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, query,
		token.ID,
		token.AccountID,
		token.Token,
		token.Code,
		token.ExpiresAt,
	).Scan(&token.CreatedAt)
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, tokenStr string) (*PasswordResetToken, error) {
	const query = `
        SELECT id, account_id, token, code, expires_at, used_at, created_at
        FROM password_reset_tokens WHERE token=$1`
	var token PasswordResetToken
	if err := r.db.QueryRow(ctx, query, tokenStr).Scan(
		&token.ID,
		&token.AccountID,
		&token.Token,
		&token.Code,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id string) (bool, error) {
	const query = `
        UPDATE password_reset_tokens SET used_at=NOW()
        WHERE id=$1 AND used_at IS NULL`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}
