package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/volcanion-labs/ssr-dispatcher/internal/workerpool"
)

// AdminHandler exposes the worker pool's lifecycle and introspection
// endpoints to an authenticated admin caller.
type AdminHandler struct {
	pool *workerpool.Pool
}

// NewAdminHandler builds an AdminHandler backed by pool.
func NewAdminHandler(pool *workerpool.Pool) *AdminHandler {
	return &AdminHandler{pool: pool}
}

// Stats handles GET /api/admin/pool/stats: a snapshot of the pool's
// current sizing and throughput counters.
func (h *AdminHandler) Stats(c *gin.Context) {
	if h.pool == nil {
		c.JSON(http.StatusOK, gin.H{"initialized": false})
		return
	}
	m := h.pool.Metrics()
	c.JSON(http.StatusOK, gin.H{
		"submitted":       m.Submitted,
		"completed":       m.Completed,
		"failed":          m.Failed,
		"active_workers":  m.ActiveWorkers,
		"min_workers":     m.MinWorkers,
		"max_workers":     m.MaxWorkers,
		"queue_depth":     m.QueueDepth,
		"queue_capacity":  m.QueueCapacity,
		"avg_duration_ms": m.AvgDurationMs,
		"healthy":         h.pool.IsHealthy(),
	})
}

// Shutdown handles POST /api/admin/pool/shutdown: drains the pool with a
// bounded timeout and reports whether every worker stopped cleanly.
// It does not stop the HTTP server itself; that happens on process signal.
func (h *AdminHandler) Shutdown(c *gin.Context) {
	if h.pool == nil {
		c.JSON(http.StatusOK, gin.H{"message": "no worker pool to drain"})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.pool.Shutdown(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "worker pool drained"})
}
