package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/usmanghani/chatbot-api/internal/domain"
)

type ResetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewResetTokenRepository(pool *pgxpool.Pool) *ResetTokenRepository {
	return &ResetTokenRepository{pool: pool}
}

// Create invalidates any still-live tokens for the user and inserts the new
// one in a single transaction, so at most one token per user is ever live.
func (r *ResetTokenRepository) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		UPDATE password_reset_tokens
		SET    used_at = NOW()
		WHERE  user_id = $1 AND used_at IS NULL AND expires_at > NOW()`,
		userID)
	if err != nil {
		return fmt.Errorf("invalidate previous tokens: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Consume claims the token with one conditional update. The WHERE clause
// carries the whole validity check, so two concurrent calls cannot both
// succeed: the second sees zero rows and gets ErrTokenInvalid.
func (r *ResetTokenRepository) Consume(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	query := `
		UPDATE password_reset_tokens
		SET    used_at = NOW()
		WHERE  token_hash = $1 AND used_at IS NULL AND expires_at > NOW()
		RETURNING id, user_id, token_hash, expires_at, used_at, created_at`

	var t domain.PasswordResetToken
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("consume reset token: %w", err)
	}
	return &t, nil
}

func (r *ResetTokenRepository) PurgeDead(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM password_reset_tokens
		WHERE (used_at IS NOT NULL AND used_at < $1) OR expires_at < $1`,
		cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge reset tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
