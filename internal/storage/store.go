package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/joseph-ayodele/material-adapter/internal/common"
)

// ObjectStore is the blob port: original materials and adapted outputs
// both go through it.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Read(ctx context.Context, key string) ([]byte, error)
}

// New selects the implementation from config once at startup.
func New(ctx context.Context, cfg common.StorageConfig, logger *slog.Logger) (ObjectStore, error) {
	switch cfg.Mode {
	case common.StorageModeGCS:
		gcs, err := NewGCSStore(ctx, GCSConfig{
			Bucket:          cfg.Bucket,
			EmulatorHost:    cfg.EmulatorHost,
			CredentialsFile: cfg.CredentialsFile,
			PutRetries:      cfg.PutRetries,
		}, logger)
		if err != nil {
			return nil, err
		}
		return gcs, nil
	case common.StorageModeLocal, "":
		local, err := NewLocalStore(cfg.LocalDir, logger)
		if err != nil {
			return nil, err
		}
		return local, nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown storage mode %q", cfg.Mode), common.ErrInvalidInput)
	}
}

// CleanKey rejects empty, absolute and parent-escaping keys.
func CleanKey(key string) (string, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return "", fmt.Errorf("empty object key")
	}
	if strings.HasPrefix(k, "/") || strings.Contains(k, "\\") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	for _, seg := range strings.Split(k, "/") {
		if seg == ".." {
			return "", fmt.Errorf("object key %q escapes its root", key)
		}
	}
	return path.Clean(k), nil
}

func storageError(op, key string, err error) error {
	return common.NewDomainError(common.ErrStorage, fmt.Sprintf("%s %s", op, key), err)
}
