package benchclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/volcanion-labs/ssr-dispatcher/internal/domain/model"
	"github.com/volcanion-labs/ssr-dispatcher/internal/ringbuffer"
	"github.com/volcanion-labs/ssr-dispatcher/internal/template"
)

// worker is one simulated concurrent user: it pulls a token from a shared
// request channel and fires one HTTP request per token until the run's
// context is cancelled.
type worker struct {
	id       int
	plan     *Plan
	client   *http.Client
	metrics  *model.Metrics
	latency  *ringbuffer.Buffer
	template *template.Engine
	logger   *zap.Logger
}

func newWorker(id int, plan *Plan, sharedTransport http.RoundTripper, metrics *model.Metrics, logger *zap.Logger) *worker {
	return &worker{
		id:   id,
		plan: plan,
		client: &http.Client{
			Transport: sharedTransport,
			Timeout:   time.Duration(plan.TimeoutMs) * time.Millisecond,
		},
		metrics: metrics,
		// 10k samples per worker caps memory on long runs while keeping
		// percentile accuracy; the pool's own duration metric uses a much
		// smaller window (100) because it only needs a rolling average.
		latency:  ringbuffer.New(10_000),
		template: template.New(time.Now().UnixNano() + int64(id)),
		logger:   logger,
	}
}

func (w *worker) run(ctx context.Context, tokens <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-tokens:
			if !ok {
				return
			}
			w.fire(ctx)
		}
	}
}

func (w *worker) fire(ctx context.Context) {
	start := time.Now()

	body := w.template.Process(w.plan.Body)
	req, err := http.NewRequestWithContext(ctx, w.plan.Method, w.plan.TargetURL, bytes.NewBufferString(body))
	if err != nil {
		w.metrics.RecordRequest(false, float64(time.Since(start).Milliseconds()), 0, err)
		return
	}
	for k, v := range w.template.ProcessMap(w.plan.Headers) {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	latencyMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		w.metrics.RecordRequest(false, latencyMs, 0, err)
		if w.logger != nil {
			w.logger.Debug("benchclient: request failed", zap.Int("worker_id", w.id), zap.Error(err))
		}
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	success := resp.StatusCode >= 200 && resp.StatusCode < 400
	var reqErr error
	if !success {
		reqErr = fmt.Errorf("status %d", resp.StatusCode)
	}
	w.metrics.RecordRequest(success, latencyMs, resp.StatusCode, reqErr)
	w.latency.Add(latencyMs)
}

func (w *worker) latencies() []float64 {
	return w.latency.All()
}
