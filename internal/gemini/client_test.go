package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/usmanghani/chatbot-api/internal/gemini"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestGenerateText_ReturnsFirstCandidate(t *testing.T) {
	srv := newServer(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"text":"hello there"}]}}]}`)
	defer srv.Close()

	c := gemini.NewClient("test-key", "test-model").WithBaseURL(srv.URL)
	got, err := c.GenerateText(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello there" {
		t.Errorf("response = %q, want %q", got, "hello there")
	}
}

func TestGenerateText_SendsPromptAndConfig(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	c := gemini.NewClient("test-key", "test-model").WithBaseURL(srv.URL)
	if _, err := c.GenerateText(context.Background(), "what is Go?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, _ := json.Marshal(captured)
	if !strings.Contains(string(raw), "what is Go?") {
		t.Errorf("request %s does not contain the prompt", raw)
	}
	if _, ok := captured["generationConfig"]; !ok {
		t.Error("request missing generationConfig")
	}
}

func TestGenerate_Non200_ReturnsError(t *testing.T) {
	srv := newServer(t, http.StatusTooManyRequests, `{"error":"quota"}`)
	defer srv.Close()

	c := gemini.NewClient("test-key", "test-model").WithBaseURL(srv.URL)
	if _, err := c.GenerateText(context.Background(), "hi"); err == nil {
		t.Fatal("want error on 429, got nil")
	}
}

func TestGenerate_EmptyCandidates_ReturnsError(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"candidates":[]}`)
	defer srv.Close()

	c := gemini.NewClient("test-key", "test-model").WithBaseURL(srv.URL)
	if _, err := c.GenerateText(context.Background(), "hi"); err == nil {
		t.Fatal("want error on empty candidates, got nil")
	}
}

func TestGenerateWithImage_InlinesBase64Data(t *testing.T) {
	var captured string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		raw, _ := json.Marshal(body)
		captured = string(raw)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"a cat"}]}}]}`))
	}))
	defer srv.Close()

	c := gemini.NewClient("test-key", "test-model").WithBaseURL(srv.URL)
	got, err := c.GenerateWithImage(context.Background(), "what is this?", "image/png", []byte{0x89, 0x50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "a cat" {
		t.Errorf("response = %q, want %q", got, "a cat")
	}
	if !strings.Contains(captured, "image/png") {
		t.Errorf("request %s does not carry the image mime type", captured)
	}
	if !strings.Contains(captured, "inline_data") {
		t.Errorf("request %s does not carry inline image data", captured)
	}
}
