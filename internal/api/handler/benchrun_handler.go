package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/volcanion-labs/ssr-dispatcher/internal/benchstore"
	"github.com/volcanion-labs/ssr-dispatcher/internal/domain"
	"github.com/volcanion-labs/ssr-dispatcher/internal/domain/model"
)

// BenchRunHandler exposes the boundary's bench-run ingest/query endpoints:
// it accepts a completed run's metrics in the same JSON shape `bench run -o`
// writes, and internal/resultviewer reads them back for display.
type BenchRunHandler struct {
	store benchstore.Store
}

// NewBenchRunHandler builds a BenchRunHandler backed by store.
func NewBenchRunHandler(store benchstore.Store) *BenchRunHandler {
	return &BenchRunHandler{store: store}
}

// Submit handles POST /api/bench-runs: stores one completed run's metrics.
func (h *BenchRunHandler) Submit(c *gin.Context) {
	var metrics model.Metrics
	if err := c.ShouldBindJSON(&metrics); err != nil {
		MapErrorToHTTP(c, domain.NewValidationError("body", err.Error()))
		return
	}

	if metrics.RunID == "" {
		MapErrorToHTTP(c, domain.NewValidationError("run_id", "run_id is required"))
		return
	}

	if err := h.store.SaveRun(c.Request.Context(), &metrics); err != nil {
		MapErrorToHTTP(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"run_id": metrics.RunID})
}

// Get handles GET /api/bench-runs/:runId: returns one run's metrics.
func (h *BenchRunHandler) Get(c *gin.Context) {
	runID := c.Param("runId")

	metrics, err := h.store.GetRun(c.Request.Context(), runID)
	if err != nil {
		MapErrorToHTTP(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// List handles GET /api/bench-runs: returns up to ?limit= runs (default
// 50) in the store's listing order — newest first for PostgresStore,
// descending run ID for JSONFileStore.
func (h *BenchRunHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		MapErrorToHTTP(c, err)
		return
	}

	c.JSON(http.StatusOK, runs)
}

// Delete handles DELETE /api/bench-runs/:runId.
func (h *BenchRunHandler) Delete(c *gin.Context) {
	runID := c.Param("runId")

	if err := h.store.DeleteRun(c.Request.Context(), runID); err != nil {
		MapErrorToHTTP(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
