package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials covers unknown email, deactivated account and
	// wrong password alike. Callers must not tell these apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthorized is returned for any bad session token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenInvalid is returned for any bad reset token: unknown,
	// expired or already used.
	ErrTokenInvalid = errors.New("token is invalid or expired")
)

type User struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordResetToken holds the SHA-256 hash of the emailed value; the raw
// token is never persisted. A token is live while UsedAt is nil and
// ExpiresAt is in the future.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
