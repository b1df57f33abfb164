// Package metrics exposes the dispatcher's Prometheus instrumentation: one
// Collector wired into both the worker pool and the dispatcher middleware so
// render activity is visible however a render actually ran.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the Prometheus metrics for the render dispatcher.
type Collector struct {
	RenderDuration  *prometheus.HistogramVec
	RendersTotal    *prometheus.CounterVec
	RendersFailed   *prometheus.CounterVec
	ActiveWorkers   prometheus.Gauge
	QueueDepth      prometheus.Gauge
	WorkersSpawned  prometheus.Counter
	WorkersRetired  prometheus.Counter

	// HTTP-level instrumentation, covering every endpoint on the boundary
	// server regardless of whether it triggers a render.
	HTTPRequestsInFlight prometheus.Gauge
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsTotal    *prometheus.CounterVec
}

// NewCollector registers and returns a fresh set of dispatcher metrics.
func NewCollector() *Collector {
	return &Collector{
		RenderDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ssr_render_duration_seconds",
				Help:    "Render latency in seconds, by execution path and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "exec_path"},
		),
		RendersTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssr_renders_total",
				Help: "Total number of renders, by execution path and route.",
			},
			[]string{"route", "exec_path"},
		),
		RendersFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssr_renders_failed_total",
				Help: "Total number of failed renders, by execution path and route.",
			},
			[]string{"route", "exec_path"},
		),
		ActiveWorkers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ssr_worker_pool_active_workers",
				Help: "Current number of live workers in the pool.",
			},
		),
		QueueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ssr_worker_pool_queue_depth",
				Help: "Current number of tasks waiting for a worker.",
			},
		),
		WorkersSpawned: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ssr_worker_pool_workers_spawned_total",
				Help: "Total number of workers spawned over the pool's lifetime.",
			},
		),
		WorkersRetired: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ssr_worker_pool_workers_retired_total",
				Help: "Total number of workers retired (idle timeout or death) over the pool's lifetime.",
			},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ssr_http_requests_in_flight",
				Help: "Current number of HTTP requests being served.",
			},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ssr_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds, by method, path, and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ssr_http_requests_total",
				Help: "Total number of HTTP requests, by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
	}
}

// RecordRender records one completed render.
func (c *Collector) RecordRender(route, execPath string, durationSec float64, failed bool) {
	c.RenderDuration.WithLabelValues(route, execPath).Observe(durationSec)
	c.RendersTotal.WithLabelValues(route, execPath).Inc()
	if failed {
		c.RendersFailed.WithLabelValues(route, execPath).Inc()
	}
}

// SetActiveWorkers sets the current live-worker gauge.
func (c *Collector) SetActiveWorkers(count int) {
	c.ActiveWorkers.Set(float64(count))
}

// SetQueueDepth sets the current queue-depth gauge.
func (c *Collector) SetQueueDepth(depth int) {
	c.QueueDepth.Set(float64(depth))
}

// IncrementHTTPRequestsInFlight marks one more HTTP request as being served.
func (c *Collector) IncrementHTTPRequestsInFlight() {
	c.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight marks one HTTP request as finished.
func (c *Collector) DecrementHTTPRequestsInFlight() {
	c.HTTPRequestsInFlight.Dec()
}

// RecordHTTPRequest records one completed HTTP request.
func (c *Collector) RecordHTTPRequest(method, path, status string, durationSec float64) {
	c.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(durationSec)
	c.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}
