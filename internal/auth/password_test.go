package auth_test

import (
	"strings"
	"testing"

	"github.com/usmanghani/chatbot-api/internal/auth"
)

func TestHashVerifyPassword(t *testing.T) {
	hash, err := auth.HashPassword("Secret1!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if hash == "Secret1!" {
		t.Fatal("hash equals plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash %q is not self-describing bcrypt output", hash)
	}

	if !auth.VerifyPassword("Secret1!", hash) {
		t.Error("correct password rejected")
	}
	if auth.VerifyPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1, err := auth.HashPassword("Secret1!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := auth.HashPassword("Secret1!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical; salt missing")
	}
}
