package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/usmanghani/chatbot-api/internal/auth"
	"github.com/usmanghani/chatbot-api/internal/domain"
)

const testKey = "token-issuer-test-secret-32chars!"

func TestIssueVerify_RoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte(testKey), auth.DefaultSessionTTL)

	signed, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := issuer.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("subject = %q, want %q", userID, "user-1")
	}
}

func TestVerify_ExpiredToken_ReturnsErrUnauthorized(t *testing.T) {
	// A negative TTL produces an already-expired token.
	issuer := auth.NewTokenIssuer([]byte(testKey), -time.Minute)

	signed, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.Verify(signed); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("want ErrUnauthorized, got %v", err)
	}
}

func TestVerify_Malformed_ReturnsErrUnauthorized(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte(testKey), auth.DefaultSessionTTL)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := issuer.Verify(raw); !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("Verify(%q): want ErrUnauthorized, got %v", raw, err)
		}
	}
}

func TestVerify_WrongKey_ReturnsErrUnauthorized(t *testing.T) {
	other := auth.NewTokenIssuer([]byte("another-test-secret-with-32chars!"), auth.DefaultSessionTTL)
	signed, err := other.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer := auth.NewTokenIssuer([]byte(testKey), auth.DefaultSessionTTL)
	if _, err := issuer.Verify(signed); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("want ErrUnauthorized, got %v", err)
	}
}

func TestVerify_MissingSubject_ReturnsErrUnauthorized(t *testing.T) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testKey))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	issuer := auth.NewTokenIssuer([]byte(testKey), auth.DefaultSessionTTL)
	if _, err := issuer.Verify(signed); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("want ErrUnauthorized, got %v", err)
	}
}
