package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Probe checks one dependency. A nil Check marks the dependency as disabled.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	appName     string
	env         string
	startedAt   time.Time
	collections []string
	probes      []Probe
}

func NewHealthHandler(appName, env string, startedAt time.Time, collections []string, probes []Probe) *HealthHandler {
	return &HealthHandler{
		appName:     appName,
		env:         env,
		startedAt:   startedAt,
		collections: collections,
		probes:      probes,
	}
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.probes))
	allOK := true
	for _, p := range h.probes {
		if p.Check == nil {
			deps[p.Name] = dependencyStatus{OK: true, Message: "disabled"}
			continue
		}
		if err := p.Check(ctx); err != nil {
			deps[p.Name] = dependencyStatus{OK: false, Message: err.Error()}
			allOK = false
			continue
		}
		deps[p.Name] = dependencyStatus{OK: true, Message: "ok"}
	}

	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"app":          h.appName,
		"env":          h.env,
		"uptime_sec":   int64(time.Since(h.startedAt).Seconds()),
		"collections":  h.collections,
		"dependencies": deps,
	})
}
