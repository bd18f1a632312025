package docfetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"studyshelf/internal/pkg/apperr"
)

const (
	DefaultTimeout  = 60 * time.Second
	DefaultMaxBytes = 20 << 20
)

// Fetcher downloads remote documents for context assembly.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

func New(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
	}
}

// FetchBytes returns the body of rawURL and its media type. The media type
// comes from Content-Type, then the URL extension, then content sniffing.
// Bodies larger than the configured limit are rejected.
func (f *Fetcher) FetchBytes(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, "", fmt.Errorf("fetch document failed: unsupported url %q: %w", rawURL, apperr.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("build document request failed: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch document failed: %v: %w", err, apperr.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, "", fmt.Errorf("fetch document status %d: %w", resp.StatusCode, apperr.ErrNotFound)
	case resp.StatusCode >= 300:
		return nil, "", fmt.Errorf("fetch document status %d: %w", resp.StatusCode, apperr.ErrUpstreamUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read document failed: %v: %w", err, apperr.ErrUpstreamUnavailable)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, "", fmt.Errorf("document exceeds %d bytes: %w", f.maxBytes, apperr.ErrInvalidInput)
	}

	return body, MediaType(resp.Header.Get("Content-Type"), u.Path, body), nil
}

// MediaType picks the most specific media type available. Generic
// octet-stream headers fall through to the extension and sniffing.
func MediaType(header, urlPath string, body []byte) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "" && mt != "application/octet-stream" {
		return mt
	}
	if ext := strings.ToLower(path.Ext(urlPath)); ext != "" {
		if ext == ".pdf" {
			return "application/pdf"
		}
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			if mt, _, err := mime.ParseMediaType(byExt); err == nil {
				return mt
			}
		}
	}
	sniffed := http.DetectContentType(body)
	if mt, _, err := mime.ParseMediaType(sniffed); err == nil {
		return mt
	}
	return "application/octet-stream"
}
