package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/usmanghani/chatbot-api/internal/domain"
	"github.com/usmanghani/chatbot-api/internal/usecase"
)

// chatUsecaser is the subset of ChatUsecase the handler needs.
type chatUsecaser interface {
	SendMessage(ctx context.Context, userID, message string) (*usecase.ChatExchange, error)
	SendImageMessage(ctx context.Context, input usecase.ImageMessageInput) (*usecase.ChatExchange, error)
	History(ctx context.Context, userID string, skip, limit int) ([]*domain.ChatMessage, error)
	GetByID(ctx context.Context, id, userID string) (*domain.ChatMessage, error)
	Delete(ctx context.Context, id, userID string) error
	DeleteAll(ctx context.Context, userID string) (int, error)
}

type ChatHandler struct {
	chatUsecase    chatUsecaser
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewChatHandler(chatUsecase chatUsecaser, maxUploadBytes int64, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatUsecase:    chatUsecase,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "chat_handler"),
	}
}

type chatMessageResponse struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	Response    string    `json:"response"`
	MessageType string    `json:"message_type"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type chatExchangeResponse struct {
	CurrentChat chatMessageResponse   `json:"current_chat"`
	ChatHistory []chatMessageResponse `json:"chat_history"`
	TotalChats  int                   `json:"total_chats"`
}

func toChatMessageResponse(m *domain.ChatMessage) chatMessageResponse {
	return chatMessageResponse{
		ID:          m.ID,
		Message:     m.Message,
		Response:    m.Response,
		MessageType: string(m.MessageType),
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt,
	}
}

func toChatExchangeResponse(ex *usecase.ChatExchange) chatExchangeResponse {
	history := make([]chatMessageResponse, 0, len(ex.History))
	for _, m := range ex.History {
		history = append(history, toChatMessageResponse(m))
	}
	return chatExchangeResponse{
		CurrentChat: toChatMessageResponse(ex.Current),
		ChatHistory: history,
		TotalChats:  ex.Total,
	}
}

type sendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// POST /api/chat/message
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exchange, err := h.chatUsecase.SendMessage(c.Request.Context(), c.GetString("userID"), req.Message)
	if err != nil {
		h.writeChatError(c, "send message", err)
		return
	}

	c.JSON(http.StatusOK, toChatExchangeResponse(exchange))
}

// POST /api/chat/upload-image
// Multipart form: "message" text field plus an "image" file.
func (h *ChatHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": errImageTooLarge})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("open upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		h.logger.Error("read upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	if int64(len(image)) > h.maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": errImageTooLarge})
		return
	}

	exchange, err := h.chatUsecase.SendImageMessage(c.Request.Context(), usecase.ImageMessageInput{
		UserID:      c.GetString("userID"),
		Message:     c.PostForm("message"),
		Image:       image,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		h.writeChatError(c, "send image message", err)
		return
	}

	c.JSON(http.StatusOK, toChatExchangeResponse(exchange))
}

// GET /api/chat/history?skip=0&limit=50
func (h *ChatHandler) History(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	msgs, err := h.chatUsecase.History(c.Request.Context(), c.GetString("userID"), skip, limit)
	if err != nil {
		h.logger.Error("history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	history := make([]chatMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, toChatMessageResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"chats": history, "count": len(history)})
}

// GET /api/chat/history/:id
func (h *ChatHandler) GetByID(c *gin.Context) {
	msg, err := h.chatUsecase.GetByID(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errChatNotFound})
			return
		}
		h.logger.Error("get chat", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toChatMessageResponse(msg))
}

// DELETE /api/chat/history/:id
func (h *ChatHandler) Delete(c *gin.Context) {
	err := h.chatUsecase.Delete(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errChatNotFound})
			return
		}
		h.logger.Error("delete chat", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Chat deleted successfully"})
}

// DELETE /api/chat/history
func (h *ChatHandler) DeleteAll(c *gin.Context) {
	count, err := h.chatUsecase.DeleteAll(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.logger.Error("delete all chats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Chat history cleared", "deleted": count})
}

// writeChatError maps the message validation errors to 400s and everything
// else to a 500.
func (h *ChatHandler) writeChatError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must not be empty"})
	case errors.Is(err, domain.ErrMessageTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is too long"})
	case errors.Is(err, domain.ErrUnsupportedImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
	default:
		h.logger.Error(op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
