package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"github.com/usmanghani/chatbot-api/internal/transport/http/handler"
	"github.com/usmanghani/chatbot-api/internal/transport/http/middleware"
)

// RouterConfig carries everything the router needs beyond the handlers.
type RouterConfig struct {
	Logger *slog.Logger

	// UploadDir, when non-empty, is served under /uploads. Used in local
	// development where images live on disk instead of object storage.
	UploadDir string
}

type tokenVerifier interface {
	Verify(raw string) (string, error)
}

func NewRouter(cfg RouterConfig, auth *handler.AuthHandler, chat *handler.ChatHandler, tokens tokenVerifier) *gin.Engine {
	handler.RegisterValidations()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(cfg.Logger))
	r.Use(middleware.Metrics())

	if cfg.UploadDir != "" {
		r.Static("/uploads", cfg.UploadDir)
	}

	api := r.Group("/api")

	public := api.Group("/auth")
	public.POST("/register", auth.Register)
	public.POST("/login", auth.Login)
	public.POST("/forgot-password", auth.ForgotPassword)
	public.POST("/reset-password", auth.ResetPassword)

	private := api.Group("/auth", middleware.Auth(tokens))
	private.GET("/me", auth.Me)
	private.GET("/verify-token", auth.VerifyToken)

	chats := api.Group("/chat", middleware.Auth(tokens))
	chats.POST("/message", chat.SendMessage)
	chats.POST("/upload-image", chat.UploadImage)
	chats.GET("/history", chat.History)
	chats.DELETE("/history", chat.DeleteAll)
	chats.GET("/history/:id", chat.GetByID)
	chats.DELETE("/history/:id", chat.Delete)

	return r
}
