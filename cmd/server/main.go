package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/usmanghani/chatbot-api/config"
	"github.com/usmanghani/chatbot-api/internal/auth"
	"github.com/usmanghani/chatbot-api/internal/cleanup"
	"github.com/usmanghani/chatbot-api/internal/email"
	"github.com/usmanghani/chatbot-api/internal/gemini"
	"github.com/usmanghani/chatbot-api/internal/health"
	"github.com/usmanghani/chatbot-api/internal/infrastructure/postgres"
	ctxlog "github.com/usmanghani/chatbot-api/internal/log"
	"github.com/usmanghani/chatbot-api/internal/metrics"
	"github.com/usmanghani/chatbot-api/internal/storage"
	httptransport "github.com/usmanghani/chatbot-api/internal/transport/http"
	"github.com/usmanghani/chatbot-api/internal/transport/http/handler"
	"github.com/usmanghani/chatbot-api/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := postgres.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		stop()
		log.Fatalf("migrations: %v", err)
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	store, uploadDir, err := newStore(ctx, cfg)
	if err != nil {
		stop()
		log.Fatalf("storage: %v", err)
	}

	// Auth
	userRepo := postgres.NewUserRepository(pool)
	resetRepo := postgres.NewResetTokenRepository(pool)
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), auth.DefaultSessionTTL)
	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, resetRepo, issuer, emailSender, cfg.FrontendBase, logger)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Chat
	chatRepo := postgres.NewChatRepository(pool)
	aiClient := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	chatUsecase := usecase.NewChatUsecase(chatRepo, aiClient, store, logger)
	chatHandler := handler.NewChatHandler(chatUsecase, cfg.MaxUploadBytes, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	purger := cleanup.NewPurger(resetRepo, cfg.CleanupSchedule, logger)
	go purger.Start(ctx)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(httptransport.RouterConfig{
			Logger:    logger,
			UploadDir: uploadDir,
		}, authHandler, chatHandler, issuer),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

// newStore picks the image store for the environment. Local keeps images on
// disk and the router serves them under /uploads; everywhere else they go to
// MinIO and the returned uploadDir is empty.
func newStore(ctx context.Context, cfg *config.Config) (storage.Store, string, error) {
	if cfg.Env == "local" {
		store, err := storage.NewDirStore(cfg.UploadDir)
		if err != nil {
			return nil, "", err
		}
		return store, cfg.UploadDir, nil
	}

	store, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, "", err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, "", err
	}
	return store, "", nil
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
