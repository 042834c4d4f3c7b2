package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/router-for-me/GraphQLTester/internal/metrics"
)

// Pinger checks a backing store.
type Pinger func(ctx context.Context) error

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	ping Pinger
}

// NewHealthHandler constructs a HealthHandler. A nil ping always reports healthy.
func NewHealthHandler(ping Pinger) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// Healthz checks slot storage connectivity and returns status.
func (h *HealthHandler) Healthz(c *gin.Context) {
	if h.ping != nil {
		if errPing := h.ping(c.Request.Context()); errPing != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RegisterOpsRoutes mounts /healthz and /metrics.
func RegisterOpsRoutes(r *gin.Engine, ping Pinger) {
	health := NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
}
