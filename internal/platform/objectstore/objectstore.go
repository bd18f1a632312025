package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"studyshelf/internal/pkg/apperr"
)

type Config struct {
	Backend         string
	Bucket          string
	PublicBaseURL   string
	CredentialsFile string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3UsePathStyle  bool
}

// Store uploads objects and returns the URL they are publicly served at.
type Store interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

func New(ctx context.Context, cfg Config) (Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("object store bucket is required")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "gcs", "":
		return NewGCSStore(ctx, cfg)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("object store backend %q: %w", cfg.Backend, apperr.ErrUnsupportedObject)
	}
}

// PublicURL joins base and an escaped object key.
func PublicURL(base, key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
