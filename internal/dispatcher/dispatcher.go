// Package dispatcher implements the per-request algorithm described in
// spec.md §4.6: match a route, fetch its data, decide whether to render
// inline or hand off to the worker pool, and assemble the reply — the
// direct descendant of the teacher's error-mapping middleware, generalized
// from domain-error responses to render responses.
package dispatcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/volcanion-labs/ssr-dispatcher/internal/config"
	"github.com/volcanion-labs/ssr-dispatcher/internal/datastage"
	"github.com/volcanion-labs/ssr-dispatcher/internal/metrics"
	"github.com/volcanion-labs/ssr-dispatcher/internal/registry"
	"github.com/volcanion-labs/ssr-dispatcher/internal/renderstage"
	"github.com/volcanion-labs/ssr-dispatcher/internal/rendertask"
	"github.com/volcanion-labs/ssr-dispatcher/internal/workerpool"
)

// ExecPathHeader carries which side of the dispatcher produced a response
// ("inline" or "worker"). Scenario 3 of spec.md §8 calls this "a debug
// marker"; it is cheap enough to always set, not gated on SSR_DEBUG.
const ExecPathHeader = "X-SSR-Exec-Path"

// WorkerIDHeader carries the numeric worker ID that produced a response,
// set only when the render ran on the worker pool.
const WorkerIDHeader = "X-SSR-Worker-Id"

// Config configures a Dispatcher.
type Config struct {
	Registry  *registry.Registry
	Pool      *workerpool.Pool
	Collector *metrics.Collector
	Logger    *zap.Logger

	Mode  config.Mode
	Debug bool

	// MetricsPath is the one well-known introspection path that always
	// runs inline in worker mode, and always wins the hybrid heuristic.
	// Defaults to "/api/metrics".
	MetricsPath string

	// ResultsViewerPath, if set, is treated as a cpu-intensive route by
	// the hybrid heuristic (spec.md §4.6).
	ResultsViewerPath string
}

// Dispatcher implements the render-request algorithm as a Gin handler,
// usable directly as a gin.Engine's NoRoute handler so every path not
// claimed by an explicit boundary route falls through to the registry.
type Dispatcher struct {
	registry  *registry.Registry
	pool      *workerpool.Pool
	collector *metrics.Collector
	logger    *zap.Logger

	mode              config.Mode
	debug             bool
	metricsPath       string
	resultsViewerPath string

	stats *Stats
}

// New builds a Dispatcher from cfg. Registry and Logger are required.
func New(cfg Config) *Dispatcher {
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/api/metrics"
	}
	return &Dispatcher{
		registry:          cfg.Registry,
		pool:              cfg.Pool,
		collector:         cfg.Collector,
		logger:            cfg.Logger,
		mode:              cfg.Mode,
		debug:             cfg.Debug,
		metricsPath:       metricsPath,
		resultsViewerPath: cfg.ResultsViewerPath,
		stats:             NewStats(),
	}
}

// Stats exposes the dispatcher's per-URL rolling duration tracker, mainly
// for tests and introspection endpoints.
func (d *Dispatcher) Stats() *Stats { return d.stats }

// Handler returns the gin.HandlerFunc implementing the full per-request
// algorithm. Wire it as router.NoRoute(dispatcher.Handler()) so every path
// the boundary doesn't claim explicitly is matched against the registry.
func (d *Dispatcher) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		route, captures, ok := d.registry.Match(path)
		if !ok {
			d.writeNotFound(c)
			return
		}

		locals := map[string]any{}
		if len(captures) > 0 {
			locals["routeParams"] = captures
		}
		if requestID, exists := c.Get("request_id"); exists {
			locals["requestId"] = requestID
		}

		task, err := rendertask.Assemble(c.Request, route.Name, nil, locals)
		if err != nil {
			d.writeErrorPage(c, http.StatusBadRequest, err)
			return
		}

		ctx := c.Request.Context()
		data, _, err := datastage.Fetch(ctx, route, task.URL, locals)
		if err != nil {
			d.writeErrorPage(c, http.StatusInternalServerError, err)
			return
		}
		task.Data = data

		chosen, reason := d.decide(path, route)
		if d.debug && d.logger != nil {
			d.logger.Debug("dispatcher: execution path decided",
				zap.String("path", path),
				zap.String("mode", string(d.mode)),
				zap.String("exec_path", string(chosen)),
				zap.String("reason", reason),
			)
		}

		renderCtx := registry.RenderContext{URL: task.URL, Method: task.Method, Locals: locals}

		var output rendertask.RenderOutput
		switch chosen {
		case execWorker:
			output, err = d.pool.Submit(ctx, task)
			if errors.Is(err, workerpool.ErrQueueFull) {
				chosen = execInline
				output, err = d.renderInline(ctx, route, data, renderCtx)
			} else if err != nil {
				d.writeErrorPage(c, statusForPoolError(err), err)
				return
			}
		default:
			output, err = d.renderInline(ctx, route, data, renderCtx)
			if err != nil {
				d.writeErrorPage(c, http.StatusInternalServerError, err)
				return
			}
		}

		d.stats.Observe(path, output.DurationMs)
		if d.collector != nil {
			d.collector.RecordRender(route.Name, string(chosen), output.DurationMs/1000, output.Err != "")
		}
		d.writeOutput(c, chosen, output)
	}
}

// renderInline runs the render stage directly on the calling goroutine,
// building a RenderOutput shaped identically to one a worker would return
// (WorkerID left at zero signals "ran inline").
func (d *Dispatcher) renderInline(ctx context.Context, route *registry.RouteDefinition, data []byte, renderCtx registry.RenderContext) (rendertask.RenderOutput, error) {
	html, dur, rerr := renderstage.Render(ctx, route, data, renderCtx)
	out := rendertask.RenderOutput{
		Body:       html,
		DurationMs: float64(dur.Milliseconds()),
	}
	if rerr != nil {
		out.Status = http.StatusInternalServerError
		out.Reason = "Internal Server Error"
		out.Err = rerr.Error()
		return out, nil
	}
	out.Status = http.StatusOK
	out.Reason = "OK"
	return out, nil
}

func (d *Dispatcher) writeOutput(c *gin.Context, chosen execPath, output rendertask.RenderOutput) {
	for name, value := range output.Headers {
		c.Writer.Header().Set(name, value)
	}
	c.Writer.Header().Set(ExecPathHeader, string(chosen))
	if output.WorkerID > 0 {
		c.Writer.Header().Set(WorkerIDHeader, strconv.Itoa(output.WorkerID))
	}
	c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Status(output.Status)
	_, _ = io.WriteString(c.Writer, output.Body)
}

func (d *Dispatcher) writeNotFound(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusNotFound)
	_, _ = io.WriteString(c.Writer, notFoundPage)
}

func (d *Dispatcher) writeErrorPage(c *gin.Context, status int, err error) {
	if d.logger != nil {
		d.logger.Error("dispatcher: request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	_, _ = io.WriteString(c.Writer, renderstage.SynthesizeErrorPage(err))
}

// statusForPoolError maps a workerpool error to the HTTP status spec.md §7
// assigns it. PoolClosed is only ever seen during shutdown.
func statusForPoolError(err error) int {
	if errors.Is(err, workerpool.ErrPoolClosed) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

const notFoundPage = `<!DOCTYPE html>
<html>
<head><title>404 Not Found</title></head>
<body>
<h1>404 Not Found</h1>
<p>No route matches this path.</p>
</body>
</html>
`
