package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// LocalStore writes exports under a directory.
type LocalStore struct {
	root string
	mu   sync.Mutex
}

// NewLocalStore creates root if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve export path: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &LocalStore{root: abs}, nil
}

// Backend implements ExportStore.
func (s *LocalStore) Backend() string { return "local" }

// Save writes data atomically via a temp file and rename.
func (s *LocalStore) Save(ctx context.Context, key string, data []byte, contentType string) (*Object, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dst := filepath.Join(s.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return nil, fmt.Errorf("write export: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("finalize export: %w", err)
	}

	return &Object{
		Key:     k,
		Backend: s.Backend(),
		URL:     "file://" + filepath.ToSlash(dst),
		Size:    int64(len(data)),
	}, nil
}

// Open returns the stored file.
func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(k)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	return f, nil
}
