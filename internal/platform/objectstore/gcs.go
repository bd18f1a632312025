package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSStore struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

func NewGCSStore(ctx context.Context, cfg Config) (*GCSStore, error) {
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client failed: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com/" + cfg.Bucket
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, publicBaseURL: base}, nil
}

func (s *GCSStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gcs object failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close gcs writer failed: %w", err)
	}
	return PublicURL(s.publicBaseURL, key), nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete gcs object failed: %w", err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
