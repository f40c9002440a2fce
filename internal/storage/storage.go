// Package storage publishes generated export workbooks to a local directory
// or an S3 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/ignite/discount-generator/internal/config"
)

var (
	// ErrNotConfigured is returned when no export backend is set up.
	ErrNotConfigured = errors.New("export storage not configured")
	// ErrInvalidKey rejects keys that would escape the store root.
	ErrInvalidKey = errors.New("invalid object key")
	// ErrNotFound is returned by Open for a missing object.
	ErrNotFound = errors.New("object not found")
)

// Object describes a stored export.
type Object struct {
	Key       string     `json:"key"`
	Backend   string     `json:"backend"`
	URL       string     `json:"url"`
	Size      int64      `json:"size"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"` // set for presigned links
}

// ExportStore persists export files and hands back a retrievable location.
type ExportStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (*Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Backend() string
}

// New builds the store selected by cfg.Type.
func New(ctx context.Context, cfg config.ExportConfig) (ExportStore, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStore(cfg.LocalPath)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("%w: s3 bucket is empty", ErrNotConfigured)
		}
		return NewS3Store(ctx, S3Options{
			Bucket:     cfg.S3Bucket,
			Prefix:     cfg.S3Prefix,
			Region:     cfg.AWSRegion,
			Profile:    cfg.GetAWSProfile(),
			PresignTTL: cfg.PresignTTL(),
		})
	case "", "none":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unknown export storage type %q", cfg.Type)
	}
}

// cleanKey normalizes a relative object key and rejects traversal.
func cleanKey(key string) (string, error) {
	k := strings.TrimSpace(key)
	if k == "" || strings.HasPrefix(k, "/") || strings.Contains(k, "\\") {
		return "", ErrInvalidKey
	}
	k = path.Clean(k)
	if k == "." || k == ".." || strings.HasPrefix(k, "../") {
		return "", ErrInvalidKey
	}
	return k, nil
}
