package handler

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"

	"github.com/volcanion-labs/ssr-dispatcher/internal/config"
	"github.com/volcanion-labs/ssr-dispatcher/internal/workerpool"
)

// StatusHandler exposes the two dispatcher-introspection endpoints spec.md
// §6 names as external interfaces: the polled pool-metrics document and the
// server-info document the benchmark client uses to label its results.
type StatusHandler struct {
	cfg  *config.Config
	pool *workerpool.Pool
}

// NewStatusHandler builds a StatusHandler backed by cfg and pool. pool may
// be nil in traditional mode, where the pool is never initialized.
func NewStatusHandler(cfg *config.Config, pool *workerpool.Pool) *StatusHandler {
	return &StatusHandler{cfg: cfg, pool: pool}
}

// Metrics handles GET /api/metrics: a JSON snapshot of the dispatcher's
// mode and the worker pool's sizing, queue, and throughput state. Always
// served with Cache-Control: no-cache, since the body reflects live state
// that must never be cached by an intermediary.
func (h *StatusHandler) Metrics(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")

	body := gin.H{
		"mode":        string(h.cfg.SSRMode),
		"initialized": h.pool != nil,
	}

	if h.pool == nil {
		body["threads"] = gin.H{"active": 0, "min": 0, "max": 0}
		body["queueSize"] = 0
		body["completed"] = uint64(0)
		body["metrics"] = gin.H{
			"submitted":     uint64(0),
			"completed":     uint64(0),
			"failed":        uint64(0),
			"successRate":   100.0,
			"failureRate":   0.0,
			"avgDurationMs": 0.0,
			"healthy":       true,
		}
		c.JSON(http.StatusOK, body)
		return
	}

	m := h.pool.Metrics()
	body["threads"] = gin.H{
		"active": m.ActiveWorkers,
		"min":    m.MinWorkers,
		"max":    m.MaxWorkers,
	}
	body["queueSize"] = m.QueueDepth
	body["queueCapacity"] = m.QueueCapacity
	body["completed"] = m.Completed
	body["metrics"] = gin.H{
		"submitted":     m.Submitted,
		"completed":     m.Completed,
		"failed":        m.Failed,
		"successRate":   successRate(m.Submitted, m.Failed),
		"failureRate":   100.0 - successRate(m.Submitted, m.Failed),
		"avgDurationMs": m.AvgDurationMs,
		"healthy":       h.pool.IsHealthy(),
	}

	c.JSON(http.StatusOK, body)
}

func successRate(submitted, failed uint64) float64 {
	if submitted == 0 {
		return 100.0
	}
	ok := submitted - failed
	return float64(ok) / float64(submitted) * 100.0
}

// ServerInfo handles GET /api/server-info: the mode and runtime
// identifiers the benchmark client embeds in a run's metrics so results
// from different dispatch modes can be told apart later.
func (h *StatusHandler) ServerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"mode":       string(h.cfg.SSRMode),
		"goVersion":  runtime.Version(),
		"goMaxProcs": runtime.GOMAXPROCS(0),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
	})
}
