package domain

import (
	"errors"
	"time"
)

var (
	ErrChatNotFound     = errors.New("chat not found")
	ErrEmptyMessage     = errors.New("message cannot be empty")
	ErrMessageTooLong   = errors.New("message is too long")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
)

type ChatMessage struct {
	ID          string
	UserID      string
	Message     string
	Response    string
	MessageType MessageType
	ImageURL    *string // nil for text-only messages
	CreatedAt   time.Time
}
