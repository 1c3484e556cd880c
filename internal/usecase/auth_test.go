package usecase_test

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/usmanghani/chatbot-api/internal/auth"
	"github.com/usmanghani/chatbot-api/internal/domain"
	"github.com/usmanghani/chatbot-api/internal/repository"
	"github.com/usmanghani/chatbot-api/internal/usecase"
)

// ---- fakes ----

type fakeUserRepo struct {
	create         func(ctx context.Context, input repository.CreateUserInput) (*domain.User, error)
	findByEmail    func(ctx context.Context, email string) (*domain.User, error)
	findByID       func(ctx context.Context, id string) (*domain.User, error)
	updatePassword func(ctx context.Context, id, newHash string) error
}

func (r *fakeUserRepo) Create(ctx context.Context, input repository.CreateUserInput) (*domain.User, error) {
	return r.create(ctx, input)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id, newHash string) error {
	return r.updatePassword(ctx, id, newHash)
}

type fakeResetRepo struct {
	create  func(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	consume func(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)
}

func (r *fakeResetRepo) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return r.create(ctx, userID, tokenHash, expiresAt)
}

func (r *fakeResetRepo) Consume(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	return r.consume(ctx, tokenHash)
}

func (r *fakeResetRepo) PurgeDead(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

type fakeIssuer struct {
	issue func(userID string) (string, error)
}

func (f *fakeIssuer) Issue(userID string) (string, error) { return f.issue(userID) }

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	if s.send == nil {
		return nil
	}
	return s.send(ctx, to, subject, body)
}

// ---- helpers ----

const testResetLinkBase = "http://localhost:3000"

func newAuthUsecase(users *fakeUserRepo, resets *fakeResetRepo, issuer *fakeIssuer, sender *fakeEmailSender) *usecase.AuthUsecase {
	if issuer == nil {
		issuer = &fakeIssuer{issue: func(string) (string, error) { return "jwt", nil }}
	}
	return usecase.NewAuthUsecase(users, resets, issuer, sender, testResetLinkBase, slog.Default())
}

func activeUser(password string) *domain.User {
	hash, _ := auth.HashPassword(password)
	return &domain.User{
		ID:           "user-1",
		Email:        "a@x.com",
		Username:     "alice",
		PasswordHash: hash,
		IsActive:     true,
	}
}

// ---- Register ----

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	var captured repository.CreateUserInput
	users := &fakeUserRepo{
		create: func(_ context.Context, input repository.CreateUserInput) (*domain.User, error) {
			captured = input
			return &domain.User{ID: "user-1", Email: input.Email, Username: input.Username}, nil
		},
	}

	_, err := newAuthUsecase(users, &fakeResetRepo{}, nil, &fakeEmailSender{}).Register(
		context.Background(), usecase.RegisterInput{
			Email:    "a@x.com",
			Username: "alice",
			Password: "Secret1!",
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.PasswordHash == "Secret1!" {
		t.Fatal("plaintext password stored")
	}
	if !auth.VerifyPassword("Secret1!", captured.PasswordHash) {
		t.Error("stored hash does not verify against the password")
	}
}

func TestRegister_Conflict_Propagates(t *testing.T) {
	users := &fakeUserRepo{
		create: func(_ context.Context, _ repository.CreateUserInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}

	_, err := newAuthUsecase(users, &fakeResetRepo{}, nil, &fakeEmailSender{}).Register(
		context.Background(), usecase.RegisterInput{Email: "a@x.com", Username: "bob", Password: "Secret1!"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("want ErrEmailTaken, got %v", err)
	}
}

func TestRegister_WelcomeEmailFailure_DoesNotFail(t *testing.T) {
	users := &fakeUserRepo{
		create: func(_ context.Context, input repository.CreateUserInput) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: input.Email, Username: input.Username}, nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error { return errors.New("smtp unavailable") },
	}

	if _, err := newAuthUsecase(users, &fakeResetRepo{}, nil, sender).Register(
		context.Background(), usecase.RegisterInput{Email: "a@x.com", Username: "alice", Password: "Secret1!"}); err != nil {
		t.Errorf("registration failed on email error: %v", err)
	}
}

// ---- Login ----

func TestLogin_Success_IssuesToken(t *testing.T) {
	user := activeUser("Secret1!")
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}
	issuer := &fakeIssuer{issue: func(userID string) (string, error) {
		if userID != user.ID {
			t.Errorf("issued for %q, want %q", userID, user.ID)
		}
		return "signed-jwt", nil
	}}

	token, got, err := newAuthUsecase(users, &fakeResetRepo{}, issuer, &fakeEmailSender{}).Login(
		context.Background(), "a@x.com", "Secret1!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "signed-jwt" {
		t.Errorf("token = %q, want %q", token, "signed-jwt")
	}
	if got.ID != user.ID {
		t.Errorf("user = %q, want %q", got.ID, user.ID)
	}
}

// Unknown email, wrong password and deactivated account must be
// indistinguishable to the caller.
func TestLogin_UniformError(t *testing.T) {
	inactive := activeUser("Secret1!")
	inactive.IsActive = false

	cases := []struct {
		name     string
		user     *domain.User
		findErr  error
		password string
	}{
		{"unknown email", nil, domain.ErrUserNotFound, "Secret1!"},
		{"wrong password", activeUser("Secret1!"), nil, "wrong"},
		{"inactive account", inactive, nil, "Secret1!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := &fakeUserRepo{
				findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
					return tc.user, tc.findErr
				},
			}
			_, _, err := newAuthUsecase(users, &fakeResetRepo{}, nil, &fakeEmailSender{}).Login(
				context.Background(), "a@x.com", tc.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Errorf("want ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

// ---- ForgotPassword ----

func TestForgotPassword_UnknownEmail_SilentSuccess(t *testing.T) {
	var stored, emailed bool
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	resets := &fakeResetRepo{
		create: func(_ context.Context, _, _ string, _ time.Time) error {
			stored = true
			return nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error {
			emailed = true
			return nil
		},
	}

	if err := newAuthUsecase(users, resets, nil, sender).ForgotPassword(
		context.Background(), "nobody@x.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored || emailed {
		t.Error("unknown email must not store a token or send mail")
	}
}

func TestForgotPassword_StoresHashOfEmailedToken(t *testing.T) {
	var capturedHash, capturedBody string
	var capturedExpiry time.Time

	user := activeUser("Secret1!")
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}
	resets := &fakeResetRepo{
		create: func(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
			if userID != user.ID {
				t.Errorf("token for %q, want %q", userID, user.ID)
			}
			capturedHash = tokenHash
			capturedExpiry = expiresAt
			return nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, body string) error {
			capturedBody = body
			return nil
		},
	}

	before := time.Now()
	if err := newAuthUsecase(users, resets, nil, sender).ForgotPassword(
		context.Background(), user.Email); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Extract the raw token from the link embedded in the email body.
	idx := strings.Index(capturedBody, "?token=")
	if idx == -1 {
		t.Fatal("email body does not contain ?token=")
	}
	rawToken := strings.SplitN(capturedBody[idx+len("?token="):], `"`, 2)[0]

	wantHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))
	if capturedHash != wantHash {
		t.Errorf("stored hash %q != SHA-256 of emailed token %q", capturedHash, wantHash)
	}
	if !capturedExpiry.After(before.Add(59 * time.Minute)) {
		t.Errorf("expiry %v is not about an hour out", capturedExpiry)
	}
}

func TestForgotPassword_EmailFailure_Swallowed(t *testing.T) {
	user := activeUser("Secret1!")
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}
	resets := &fakeResetRepo{
		create: func(_ context.Context, _, _ string, _ time.Time) error { return nil },
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error { return errors.New("smtp unavailable") },
	}

	if err := newAuthUsecase(users, resets, nil, sender).ForgotPassword(
		context.Background(), user.Email); err != nil {
		t.Errorf("delivery failure leaked to caller: %v", err)
	}
}

// ---- ResetPassword ----

func TestResetPassword_ConsumesHashAndUpdatesPassword(t *testing.T) {
	const rawToken = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	expectedHash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))

	var updatedID, updatedHash string
	users := &fakeUserRepo{
		updatePassword: func(_ context.Context, id, newHash string) error {
			updatedID, updatedHash = id, newHash
			return nil
		},
	}
	resets := &fakeResetRepo{
		consume: func(_ context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
			if tokenHash != expectedHash {
				return nil, domain.ErrTokenInvalid
			}
			return &domain.PasswordResetToken{ID: "rt-1", UserID: "user-1", TokenHash: tokenHash}, nil
		},
	}

	if err := newAuthUsecase(users, resets, nil, &fakeEmailSender{}).ResetPassword(
		context.Background(), rawToken, "NewSecret1!"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updatedID != "user-1" {
		t.Errorf("updated user %q, want %q", updatedID, "user-1")
	}
	if !auth.VerifyPassword("NewSecret1!", updatedHash) {
		t.Error("stored hash does not verify against the new password")
	}
}

func TestResetPassword_InvalidToken_ReturnsErrTokenInvalid(t *testing.T) {
	resets := &fakeResetRepo{
		consume: func(_ context.Context, _ string) (*domain.PasswordResetToken, error) {
			return nil, domain.ErrTokenInvalid
		},
	}

	err := newAuthUsecase(&fakeUserRepo{}, resets, nil, &fakeEmailSender{}).ResetPassword(
		context.Background(), "bad-token", "NewSecret1!")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}
