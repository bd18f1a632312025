package ai

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"studyshelf/internal/pkg/apperr"
)

// statusError maps an upstream HTTP status onto the shared error vocabulary.
// The upstream body is kept in the message for logs only.
func statusError(provider string, resp *http.Response) error {
	slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	msg := strings.TrimSpace(string(slurp))

	var kind error
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = apperr.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = apperr.ErrAccessDenied
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusRequestTimeout:
		kind = apperr.ErrUpstreamUnavailable
	default:
		kind = apperr.ErrModelError
	}
	return fmt.Errorf("%s response status %d: %s: %w", provider, resp.StatusCode, msg, kind)
}
