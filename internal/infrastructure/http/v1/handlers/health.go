package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"khaata/internal/infrastructure/storage/postgres"
)

// Pinger checks a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	storage string
	pool    *postgres.Pool
	cache   Pinger
}

// NewHealthHandler creates a health handler. pool and cache may be nil.
func NewHealthHandler(storage string, pool *postgres.Pool, cache Pinger) *HealthHandler {
	return &HealthHandler{storage: storage, pool: pool, cache: cache}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	checks := map[string]string{"storage": h.storage}

	if h.pool != nil {
		if err := h.pool.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	}
	// The cache is optional; a failing cache degrades reads but does not block traffic.
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = "degraded: " + err.Error()
		} else {
			checks["cache"] = "healthy"
		}
	}

	body := gin.H{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "error"
	}
	if h.pool != nil {
		body["pool"] = h.pool.Stats()
	}
	c.JSON(status, body)
}
