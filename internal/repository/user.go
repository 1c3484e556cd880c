package repository

import (
	"context"

	"github.com/usmanghani/chatbot-api/internal/domain"
)

type CreateUserInput struct {
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
}

// UseCase depends on interface, not concrete implementation.
// This way we get: 1) can swap DB later without touching usecase 2) We can pass a mock implementation of interface in tests
type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrEmailTaken or
	// domain.ErrUsernameTaken when the respective unique constraint fires.
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, newHash string) error
}
