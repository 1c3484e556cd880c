package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirStore writes images to a local directory — used in ENV=local, where
// the router serves the directory under /uploads.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

func (s *DirStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	f, err := os.Create(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return "/uploads/" + filepath.Base(key), nil
}

func (s *DirStore) Delete(_ context.Context, url string) error {
	name := filepath.Base(url)
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload file: %w", err)
	}
	return nil
}
