package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/usmanghani/chatbot-api/internal/domain"
	"github.com/usmanghani/chatbot-api/internal/metrics"
	"github.com/usmanghani/chatbot-api/internal/repository"
	"github.com/usmanghani/chatbot-api/internal/storage"
)

const (
	maxMessageLen  = 5000
	historyPreview = 20
	maxHistoryPage = 100
)

// extByMime doubles as the allow-list for uploaded images.
var extByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// aiClient is the subset of the Gemini client the usecase needs.
type aiClient interface {
	GenerateText(ctx context.Context, message string) (string, error)
	GenerateWithImage(ctx context.Context, message, mimeType string, image []byte) (string, error)
}

type ChatUsecase struct {
	chats  repository.ChatRepository
	ai     aiClient
	store  storage.Store
	logger *slog.Logger
}

func NewChatUsecase(chats repository.ChatRepository, ai aiClient, store storage.Store, logger *slog.Logger) *ChatUsecase {
	return &ChatUsecase{
		chats:  chats,
		ai:     ai,
		store:  store,
		logger: logger.With("component", "chat_usecase"),
	}
}

// ChatExchange is one persisted exchange plus the preceding history.
type ChatExchange struct {
	Current *domain.ChatMessage
	History []*domain.ChatMessage
	Total   int
}

// SendMessage forwards a text message to the AI, persists the exchange and
// returns it together with the last 20 prior exchanges.
func (u *ChatUsecase) SendMessage(ctx context.Context, userID, message string) (*ChatExchange, error) {
	message, err := normalizeMessage(message)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	response, err := u.ai.GenerateText(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}
	metrics.ChatGenerationDuration.Observe(time.Since(start).Seconds())

	current, err := u.chats.Create(ctx, &domain.ChatMessage{
		UserID:      userID,
		Message:     message,
		Response:    response,
		MessageType: domain.MessageText,
	})
	if err != nil {
		return nil, fmt.Errorf("store chat: %w", err)
	}

	metrics.ChatRequestsTotal.WithLabelValues(string(domain.MessageText)).Inc()
	return u.withHistory(ctx, current)
}

type ImageMessageInput struct {
	UserID      string
	Message     string
	Image       []byte
	ContentType string
}

// SendImageMessage stores the image, asks the AI about it and persists the
// exchange. If generation fails the stored image is removed again.
func (u *ChatUsecase) SendImageMessage(ctx context.Context, input ImageMessageInput) (*ChatExchange, error) {
	message, err := normalizeMessage(input.Message)
	if err != nil {
		return nil, err
	}
	ext, ok := extByMime[input.ContentType]
	if !ok {
		return nil, domain.ErrUnsupportedImage
	}

	key := uuid.NewString() + ext
	imageURL, err := u.store.Put(ctx, key, bytes.NewReader(input.Image), int64(len(input.Image)), input.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	start := time.Now()
	response, err := u.ai.GenerateWithImage(ctx, message, input.ContentType, input.Image)
	if err != nil {
		if delErr := u.store.Delete(ctx, imageURL); delErr != nil {
			u.logger.ErrorContext(ctx, "clean up image after failed generation", "error", delErr)
		}
		return nil, fmt.Errorf("generate response: %w", err)
	}
	metrics.ChatGenerationDuration.Observe(time.Since(start).Seconds())

	current, err := u.chats.Create(ctx, &domain.ChatMessage{
		UserID:      input.UserID,
		Message:     message,
		Response:    response,
		MessageType: domain.MessageImage,
		ImageURL:    &imageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("store chat: %w", err)
	}

	metrics.ChatRequestsTotal.WithLabelValues(string(domain.MessageImage)).Inc()
	return u.withHistory(ctx, current)
}

// History returns the user's chats, newest first.
func (u *ChatUsecase) History(ctx context.Context, userID string, skip, limit int) ([]*domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > maxHistoryPage {
		limit = maxHistoryPage
	}
	if skip < 0 {
		skip = 0
	}

	msgs, err := u.chats.List(ctx, repository.ListChatsInput{
		UserID: userID,
		Skip:   skip,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return msgs, nil
}

func (u *ChatUsecase) GetByID(ctx context.Context, id, userID string) (*domain.ChatMessage, error) {
	msg, err := u.chats.GetByID(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return msg, nil
}

// Delete removes one chat and its stored image, if any.
func (u *ChatUsecase) Delete(ctx context.Context, id, userID string) error {
	msg, err := u.chats.GetByID(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("get chat: %w", err)
	}

	if err := u.chats.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}

	if msg.ImageURL != nil {
		if err := u.store.Delete(ctx, *msg.ImageURL); err != nil {
			u.logger.ErrorContext(ctx, "delete chat image", "chat_id", id, "error", err)
		}
	}
	return nil
}

// DeleteAll wipes the user's history and returns how many chats were removed.
func (u *ChatUsecase) DeleteAll(ctx context.Context, userID string) (int, error) {
	deleted, err := u.chats.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete all chats: %w", err)
	}

	for _, msg := range deleted {
		if msg.ImageURL == nil {
			continue
		}
		if err := u.store.Delete(ctx, *msg.ImageURL); err != nil {
			u.logger.ErrorContext(ctx, "delete chat image", "chat_id", msg.ID, "error", err)
		}
	}
	return len(deleted), nil
}

func (u *ChatUsecase) withHistory(ctx context.Context, current *domain.ChatMessage) (*ChatExchange, error) {
	history, err := u.chats.List(ctx, repository.ListChatsInput{
		UserID:    current.UserID,
		Limit:     historyPreview,
		ExcludeID: current.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	total, err := u.chats.CountByUser(ctx, current.UserID)
	if err != nil {
		return nil, fmt.Errorf("count chats: %w", err)
	}

	return &ChatExchange{Current: current, History: history, Total: total}, nil
}

func normalizeMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.ErrEmptyMessage
	}
	if len(message) > maxMessageLen {
		return "", domain.ErrMessageTooLong
	}
	return message, nil
}
