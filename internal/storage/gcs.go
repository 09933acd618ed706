package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/material-adapter/internal/common"
)

type GCSConfig struct {
	Bucket          string
	EmulatorHost    string // e.g. http://localhost:4443 for fake-gcs-server
	CredentialsFile string
	PutRetries      int
}

type GCSStore struct {
	client *gstorage.Client
	cfg    GCSConfig
	logger *slog.Logger
}

func NewGCSStore(ctx context.Context, cfg GCSConfig, logger *slog.Logger) (*GCSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Bucket == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "GCS bucket is required", common.ErrInvalidInput)
	}
	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")

	var opts []option.ClientOption
	if cfg.EmulatorHost != "" {
		// the client library reads the emulator endpoint from the environment
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		opts = append(opts, option.WithoutAuthentication())
	} else {
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		opts = append(opts, option.WithScopes(gstorage.ScopeReadWrite))
	}
	client, err := gstorage.NewClient(ctx, opts...)
	if err != nil {
		logger.Error("storage.gcs.client_error", "error", err)
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	logger.Info("storage.gcs.ready", "bucket", cfg.Bucket, "emulator_host", cfg.EmulatorHost)
	return &GCSStore{client: client, cfg: cfg, logger: logger}, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

// Put writes the object, retrying transient failures, and returns its public URL.
func (s *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	start := time.Now()
	clean, err := CleanKey(key)
	if err != nil {
		return "", storageError("put", key, err)
	}
	key = clean

	policy := common.RetryPolicy{MaxRetries: s.cfg.PutRetries, Backoff: 500 * time.Millisecond}
	err = common.Retry(ctx, policy, "storage.put", s.logger, isRetryableGCS, func(ctx context.Context) error {
		wctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		w := s.client.Bucket(s.cfg.Bucket).Object(key).NewWriter(wctx)
		w.ContentType = contentType
		if _, err := w.Write(data); err != nil {
			_ = w.Close()
			return fmt.Errorf("write object: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("close writer: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("storage.put.error", "key", key, "error", err)
		return "", storageError("put", key, err)
	}

	s.logger.Info("storage.put.ok",
		"key", key,
		"bytes", len(data),
		"content_type", contentType,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return s.publicURL(key), nil
}

// SignedURL returns a V4 GET URL. The emulator cannot sign, so it gets the media URL.
func (s *GCSStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", storageError("sign", key, err)
	}
	key = clean
	if s.cfg.EmulatorHost != "" {
		return s.publicURL(key), nil
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	u, err := s.client.Bucket(s.cfg.Bucket).SignedURL(key, &gstorage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  gstorage.SigningSchemeV4,
	})
	if err != nil {
		s.logger.Error("storage.sign.error", "key", key, "error", err)
		return "", storageError("sign", key, err)
	}
	return u, nil
}

func (s *GCSStore) Read(ctx context.Context, key string) ([]byte, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return nil, storageError("read", key, err)
	}
	key = clean
	rctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	r, err := s.client.Bucket(s.cfg.Bucket).Object(key).NewReader(rctx)
	if err != nil {
		if errors.Is(err, gstorage.ErrObjectNotExist) {
			return nil, storageError("read", key, errors.Join(common.ErrNotFound, err))
		}
		return nil, storageError("read", key, err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, storageError("read", key, err)
	}
	return b, nil
}

func (s *GCSStore) publicURL(key string) string {
	if s.cfg.EmulatorHost != "" {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media",
			s.cfg.EmulatorHost, url.PathEscape(s.cfg.Bucket), url.PathEscape(key))
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.cfg.Bucket, key)
}

func isRetryableGCS(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, gstorage.ErrBucketNotExist)
}
