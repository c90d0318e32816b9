// Package media stores product images and derives their public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/luxe/internal/config"
)

// Store persists encoded image objects under flat keys.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// URL returns the public URL stored on products for key.
	URL(key string) string
}

// Module wires the image store, transcoder, uploader and preview resolver.
var Module = fx.Provide(
	NewStore,
	NewTranscoder,
	NewUploader,
	NewPreviewer,
)

// ErrInvalidKey is returned for empty keys or keys escaping the store root.
var ErrInvalidKey = errors.New("invalid object key")

// NewStore selects the configured image store backend.
func NewStore(cfg config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case "local":
		if logger != nil {
			logger.Info("image store: local", zap.String("dir", cfg.Storage.LocalDir))
		}
		return NewLocalStore(cfg.Storage.LocalDir, cfg.Storage.PublicPrefix), nil
	case "s3":
		if logger != nil {
			logger.Info("image store: s3", zap.String("bucket", cfg.Storage.S3.Bucket))
		}
		return NewS3Store(cfg.Storage, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}

// cleanKey rejects keys that are empty or contain path segments.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || key != path.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}

// KeyFromURL extracts the object key from a stored image URL.
func KeyFromURL(u string) string {
	u = strings.TrimSpace(u)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if u == "" {
		return ""
	}
	return path.Base(u)
}
