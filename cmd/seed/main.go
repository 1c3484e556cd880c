// seed inserts a demo user with some chat history into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/usmanghani/chatbot-api/internal/auth"
	"github.com/usmanghani/chatbot-api/internal/infrastructure/postgres"
)

const (
	seedEmail    = "demo@test.local"
	seedUsername = "demo_user"
	seedPassword = "Demo1234pass"
)

type exchange struct {
	message  string
	response string
}

var exchanges = []exchange{
	{"Hello! What can you do?", "Hi! I can answer questions, chat about almost anything and describe images you upload."},
	{"What's a good name for a golden retriever?", "Classic picks are Buddy, Max and Bailey. For a golden specifically, Sunny fits the coat."},
	{"Explain goroutines in one sentence.", "Goroutines are lightweight threads managed by the Go runtime, started with the go keyword."},
	{"Give me a dinner idea with chickpeas.", "Try a chickpea curry: onion, garlic, canned tomatoes, coconut milk and a tin of chickpeas over rice."},
	{"How far is the Moon?", "On average about 384,400 km, roughly 30 Earth diameters away."},
}

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := postgres.RunMigrations(ctx, dbURL); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert demo user (idempotent re-runs)
	var userID string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, username, first_name, last_name, password_hash)
		VALUES (LOWER($1), $2, 'Demo', 'User', $3)
		ON CONFLICT (username) DO UPDATE SET updated_at = NOW()
		RETURNING id`,
		seedEmail, seedUsername, hash,
	).Scan(&userID)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	var inserted int
	for _, ex := range exchanges {
		tag, err := pool.Exec(ctx, `
			INSERT INTO chat_messages (user_id, message, response, message_type)
			SELECT $1, $2, $3, 'text'
			WHERE NOT EXISTS (
				SELECT 1 FROM chat_messages WHERE user_id = $1 AND message = $2
			)`,
			userID, ex.message, ex.response,
		)
		if err != nil {
			log.Fatalf("insert chat: %v", err)
		}
		inserted += int(tag.RowsAffected())
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:          %s\n", seedEmail)
	fmt.Printf("  User ID:       %s\n", userID)
	fmt.Printf("  Password:      %s\n", seedPassword)
	fmt.Printf("  Chats created: %d  (skipped %d already existing)\n", inserted, len(exchanges)-inserted)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 — log in:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/api/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("    # → {\"access_token\":\"eyJ...\",\"token_type\":\"bearer\",...}")
	fmt.Println()
	fmt.Println("  Step 2 — browse the seeded history:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s http://localhost:8080/api/chat/history -H \"Authorization: Bearer $JWT\"")
	fmt.Println()
	fmt.Println("  Step 3 — send a message (needs GEMINI_API_KEY on the server):")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/api/chat/message \\\n")
	fmt.Println("      -H \"Authorization: Bearer $JWT\" -H 'Content-Type: application/json' \\")
	fmt.Println("      -d '{\"message\":\"Hello there\"}'")
}
