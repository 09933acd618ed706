package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/material-adapter/internal/common"
)

// LocalStore keeps objects under a directory; URLs are file:// URLs.
type LocalStore struct {
	root   string
	logger *slog.Logger
}

func NewLocalStore(dir string, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "./tmp/storage"
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	logger.Info("storage.local.ready", "root", abs)
	return &LocalStore{root: abs, logger: logger}, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := s.path(key)
	if err != nil {
		return "", storageError("put", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", storageError("put", key, err)
	}
	tmp := p + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", storageError("put", key, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return "", storageError("put", key, err)
	}
	s.logger.Info("storage.put.ok", "key", key, "bytes", len(data), "content_type", contentType)
	return fileURL(p), nil
}

// SignedURL has nothing to sign locally; it returns the file URL of an existing object.
func (s *LocalStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", storageError("sign", key, err)
	}
	if _, err := os.Stat(p); err != nil {
		return "", storageError("sign", key, notFound(err))
	}
	return fileURL(p), nil
}

func (s *LocalStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, storageError("read", key, err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, storageError("read", key, notFound(err))
	}
	return b, nil
}

func (s *LocalStore) path(key string) (string, error) {
	k, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Join(common.ErrNotFound, err)
	}
	return err
}

func fileURL(p string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
}
