package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/usmanghani/chatbot-api/internal/domain"
	"github.com/usmanghani/chatbot-api/internal/repository"
)

type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

func (r *ChatRepository) Create(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	query := `
		INSERT INTO chat_messages (user_id, message, response, message_type, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, message, response, message_type, image_url, created_at`

	row := r.pool.QueryRow(ctx, query,
		msg.UserID, msg.Message, msg.Response, msg.MessageType, msg.ImageURL)
	return scanChat(row)
}

func (r *ChatRepository) GetByID(ctx context.Context, id, userID string) (*domain.ChatMessage, error) {
	query := `
		SELECT id, user_id, message, response, message_type, image_url, created_at
		FROM chat_messages
		WHERE id = $1 AND user_id = $2`

	return scanChat(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *ChatRepository) List(ctx context.Context, input repository.ListChatsInput) ([]*domain.ChatMessage, error) {
	args := []any{input.UserID}
	where := []string{"user_id = $1"}

	if input.ExcludeID != "" {
		args = append(args, input.ExcludeID)
		where = append(where, fmt.Sprintf("id <> $%d", len(args)))
	}
	args = append(args, input.Limit, input.Skip)

	query := fmt.Sprintf(`
		SELECT id, user_id, message, response, message_type, image_url, created_at
		FROM chat_messages
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		m, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *ChatRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count chats: %w", err)
	}
	return n, nil
}

func (r *ChatRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM chat_messages WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}

func (r *ChatRepository) DeleteAllByUser(ctx context.Context, userID string) ([]*domain.ChatMessage, error) {
	query := `
		DELETE FROM chat_messages
		WHERE user_id = $1
		RETURNING id, user_id, message, response, message_type, image_url, created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("delete all chats: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		m, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChat(row rowScanner) (*domain.ChatMessage, error) {
	var m domain.ChatMessage
	err := row.Scan(
		&m.ID, &m.UserID, &m.Message, &m.Response,
		&m.MessageType, &m.ImageURL, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("scan chat: %w", err)
	}
	return &m, nil
}
