package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	rateLimitMessage = "Too many requests from this IP, please try again later."
	maxTrackedIPs    = 10000
)

// RateLimit allows requests per window for each client IP as a token bucket
// with a burst of the full window. Idle limiters age out of the table after
// one window.
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	if requests <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	every := rate.Every(window / time.Duration(requests))
	limiters := expirable.NewLRU[string, *rate.Limiter](maxTrackedIPs, nil, window)
	var mu sync.Mutex

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters.Get(ip); ok {
			return l
		}
		l := rate.NewLimiter(every, requests)
		limiters.Add(ip, l)
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"msg": rateLimitMessage})
			return
		}
		c.Next()
	}
}
