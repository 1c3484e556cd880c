// Package storage persists uploaded chat images.
package storage

import (
	"context"
	"io"
)

// Store saves uploaded images and deletes them when chats are removed.
// Put returns the URL persisted alongside the chat message; Delete accepts
// that same URL back.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}
