package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyshelf/internal/pkg/jwtutil"
	"studyshelf/internal/platform/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(2, time.Hour))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2"))
}

func TestRateLimitDisabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(0, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestAuthJWT(t *testing.T) {
	const secret = "s3cret"
	r := gin.New()
	r.Use(AuthJWT(secret))
	r.GET("/", func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer nope").Code)

	token, err := jwtutil.GenerateToken(secret, time.Minute, 42, "ana")
	require.NoError(t, err)
	w := call("Bearer " + token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":42}`, w.Body.String())
}

func TestRequestLog(t *testing.T) {
	r := gin.New()
	r.Use(RequestLog(logger.NewNop(), nil))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{header: "", wantErr: errMissingHeader},
		{header: "Bearer", wantErr: errBadScheme},
		{header: "Basic abc", wantErr: errBadScheme},
		{header: "Bearer   ", wantErr: errBadScheme},
		{header: "Bearer abc", want: "abc"},
		{header: "bearer  abc ", want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := bearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
