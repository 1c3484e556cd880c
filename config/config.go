package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret    string `env:"JWT_SECRET,required"  validate:"required,min=32"`
	ResendAPIKey string `env:"RESEND_API_KEY"       validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"          validate:"required_if=Env production,required_if=Env staging"`
	FrontendBase string `env:"FRONTEND_BASE_URL"    envDefault:"http://localhost:3000"`

	GeminiAPIKey string `env:"GEMINI_API_KEY,required" validate:"required"`
	GeminiModel  string `env:"GEMINI_MODEL"            envDefault:"gemini-2.0-flash"`

	// Image uploads go to MinIO outside local; local falls back to UploadDir.
	MinioEndpoint  string `env:"MINIO_ENDPOINT"   validate:"required_if=Env production,required_if=Env staging"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" validate:"required_if=Env production,required_if=Env staging"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" validate:"required_if=Env production,required_if=Env staging"`
	MinioBucket    string `env:"MINIO_BUCKET"     envDefault:"chat-uploads"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"    envDefault:"true"`
	UploadDir      string `env:"UPLOAD_DIR"       envDefault:"uploads"`

	MaxUploadBytes  int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760" validate:"min=1"`
	CleanupSchedule string `env:"CLEANUP_SCHEDULE" envDefault:"@hourly"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
