package repository

import (
	"context"

	"github.com/usmanghani/chatbot-api/internal/domain"
)

type ListChatsInput struct {
	UserID    string
	Skip      int
	Limit     int
	ExcludeID string // skip one message, used to keep the current exchange out of history
}

type ChatRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error)
	GetByID(ctx context.Context, id, userID string) (*domain.ChatMessage, error)
	List(ctx context.Context, input ListChatsInput) ([]*domain.ChatMessage, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id, userID string) error
	// DeleteAllByUser removes every message for the user and returns the
	// deleted rows so callers can clean up stored images.
	DeleteAllByUser(ctx context.Context, userID string) ([]*domain.ChatMessage, error)
}
