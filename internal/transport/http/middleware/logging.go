package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"studyshelf/internal/observability"
	"studyshelf/internal/platform/logger"
)

// RequestLog logs each request through zap and records its latency. The
// route template is used as the metric label to keep cardinality bounded.
func RequestLog(log *logger.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequest(c.Request.Method, route, status, elapsed)

		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", elapsed.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			log.Error("http request", kv...)
		case status >= 400:
			log.Warn("http request", kv...)
		default:
			log.Info("http request", kv...)
		}
	}
}
