package docfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyshelf/internal/pkg/apperr"
)

func TestFetchBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notes.txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("ohm's law"))
		case "/unit1.pdf":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("%PDF-1.4 fake"))
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := New(5*time.Second, 32)
	ctx := context.Background()

	t.Run("text with header type", func(t *testing.T) {
		body, mt, err := f.FetchBytes(ctx, srv.URL+"/notes.txt")
		require.NoError(t, err)
		assert.Equal(t, "ohm's law", string(body))
		assert.Equal(t, "text/plain", mt)
	})

	t.Run("pdf by extension", func(t *testing.T) {
		_, mt, err := f.FetchBytes(ctx, srv.URL+"/unit1.pdf")
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", mt)
	})

	t.Run("not found", func(t *testing.T) {
		_, _, err := f.FetchBytes(ctx, srv.URL+"/missing.pdf")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("server error", func(t *testing.T) {
		_, _, err := f.FetchBytes(ctx, srv.URL+"/boom")
		assert.ErrorIs(t, err, apperr.ErrUpstreamUnavailable)
	})

	t.Run("too large", func(t *testing.T) {
		_, _, err := f.FetchBytes(ctx, srv.URL+"/big")
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	})

	t.Run("bad scheme", func(t *testing.T) {
		_, _, err := f.FetchBytes(ctx, "file:///etc/passwd")
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	})
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "application/pdf", MediaType("", "/a/b.PDF", nil))
	assert.Equal(t, "text/markdown", MediaType("text/markdown; charset=utf-8", "/a", nil))
	assert.Equal(t, "text/plain", MediaType("", "/noext", []byte("hello world")))
}
