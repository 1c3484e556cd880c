package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/usmanghani/chatbot-api/internal/auth"
	"github.com/usmanghani/chatbot-api/internal/domain"
	"github.com/usmanghani/chatbot-api/internal/email"
	"github.com/usmanghani/chatbot-api/internal/metrics"
	"github.com/usmanghani/chatbot-api/internal/repository"
)

const defaultResetTTL = 1 * time.Hour

// tokenIssuer is the subset of auth.TokenIssuer the usecase needs.
type tokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthUsecase struct {
	users         repository.UserRepository
	resets        repository.ResetTokenRepository
	tokens        tokenIssuer
	email         email.Sender
	logger        *slog.Logger
	resetTTL      time.Duration
	resetLinkBase string
}

func NewAuthUsecase(
	users repository.UserRepository,
	resets repository.ResetTokenRepository,
	tokens tokenIssuer,
	emailSender email.Sender,
	resetLinkBase string,
	logger *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:         users,
		resets:        resets,
		tokens:        tokens,
		email:         emailSender,
		logger:        logger.With("component", "auth_usecase"),
		resetTTL:      defaultResetTTL,
		resetLinkBase: resetLinkBase,
	}
}

type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register hashes the password and creates the user. Uniqueness violations
// surface as domain.ErrEmailTaken / domain.ErrUsernameTaken. The welcome
// email is best-effort; a delivery failure never fails the registration.
func (u *AuthUsecase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, repository.CreateUserInput{
		Email:        input.Email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	metrics.RegistrationsTotal.Inc()

	subject := "Welcome to Chatbot"
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your account is ready. Log in and start chatting.</p>`,
		user.Username,
	)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		metrics.EmailFailuresTotal.Inc()
		u.logger.ErrorContext(ctx, "send welcome email", "error", err)
	}

	return user, nil
}

// Login verifies credentials and issues a session token. Unknown email,
// deactivated account and wrong password all return ErrInvalidCredentials
// so that callers cannot probe which accounts exist.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (string, *domain.User, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("denied").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive || !auth.VerifyPassword(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("denied").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := u.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue session token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return token, user, nil
}

// CurrentUser loads the user behind an already-verified session token.
func (u *AuthUsecase) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// ForgotPassword issues a reset token and emails the reset link. It returns
// nil for unknown emails and swallows delivery failures, so the caller's
// response is identical whether or not the account exists.
func (u *AuthUsecase) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)
	tokenHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))

	expiresAt := time.Now().Add(u.resetTTL)
	if err := u.resets.Create(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	metrics.ResetRequestsTotal.Inc()

	link := u.resetLinkBase + "/reset-password?token=" + rawToken
	subject := "Reset your password"
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Click the link below to choose a new password (expires in 1 hour):</p><p><a href="%s">%s</a></p><p>If you didn't request this, ignore this email.</p>`,
		user.Username, link, link,
	)
	if err := u.email.Send(ctx, user.Email, subject, body); err != nil {
		metrics.EmailFailuresTotal.Inc()
		u.logger.ErrorContext(ctx, "send reset email", "error", err)
	}
	return nil
}

// ResetPassword atomically consumes the token and stores the new password
// hash. Unknown, expired and already-used tokens are indistinguishable.
func (u *AuthUsecase) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	tokenHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))

	rt, err := u.resets.Consume(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			return domain.ErrTokenInvalid
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, rt.UserID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	metrics.ResetsCompletedTotal.Inc()
	return nil
}
