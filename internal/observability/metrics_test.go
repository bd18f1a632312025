package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshFailedCounter(t *testing.T) {
	m := NewMetrics(NewRegistry())
	m.RefreshFailed("tree", "2")
	m.RefreshFailed("tree", "2")
	m.RefreshFailed("tree", "3")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RefreshFailuresTotal.WithLabelValues("tree", "2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshFailuresTotal.WithLabelValues("tree", "3")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RefreshFailed("tree", "1")
	m.CacheLookup("directory", "miss")
	m.AIRequest("chat", "ok", time.Second)
	m.HTTPRequest("GET", "/", 200, time.Millisecond)
}

func TestHandlerExposesMetrics(t *testing.T) {
	registry := NewRegistry()
	m := NewMetrics(registry)
	m.CacheLookup("directory", "fresh")

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `studyshelf_cache_lookups_total{cache="directory",result="fresh"} 1`)
}
