package repository

import (
	"context"
	"time"

	"github.com/usmanghani/chatbot-api/internal/domain"
)

type ResetTokenRepository interface {
	// Create stores a new reset token hash and, in the same transaction,
	// invalidates any still-live tokens belonging to the user. At most one
	// token per user is ever live.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// Consume atomically claims a live token and returns it. A token that
	// is unknown, expired or already used yields domain.ErrTokenInvalid;
	// of two concurrent calls with the same hash exactly one succeeds.
	Consume(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)

	// PurgeDead deletes tokens that have been used or expired since before
	// the cutoff. Returns the number of rows removed.
	PurgeDead(ctx context.Context, cutoff time.Time) (int, error)
}
