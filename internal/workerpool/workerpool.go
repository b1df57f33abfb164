// Package workerpool implements the render dispatcher's worker pool: a set
// of goroutine workers, each with its own independently loaded route
// registry, communicating with submitters exclusively through buffered
// channels of rendertask values. Sizing, idle retirement, and the absolute
// queue cap follow the dispatcher's resource model; worker lifecycle and
// shutdown follow the teacher's engine.Scheduler/engine.Worker shape.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/volcanion-labs/ssr-dispatcher/internal/cpudetect"
	"github.com/volcanion-labs/ssr-dispatcher/internal/metrics"
	"github.com/volcanion-labs/ssr-dispatcher/internal/registry"
	"github.com/volcanion-labs/ssr-dispatcher/internal/rendertask"
	"github.com/volcanion-labs/ssr-dispatcher/internal/ringbuffer"
)

// Sentinel errors surfaced by the pool.
var (
	ErrAlreadyInitialized = errors.New("workerpool: already initialized")
	ErrWorkerInitFailed   = errors.New("workerpool: worker initialization failed")
	ErrQueueFull          = errors.New("workerpool: queue full")
	ErrWorkerDied         = errors.New("workerpool: worker died")
	ErrWorkerTimedOut     = errors.New("workerpool: worker timed out")
	ErrPoolClosed         = errors.New("workerpool: pool closed")
)

const (
	defaultIdleTimeout    = 30 * time.Second
	durationSampleWindow  = 100
	unhealthyFailureShare = 0.10
)

// RegistryFactory builds a fresh, independently populated route registry.
// Each worker calls this exactly once, at spawn time, rather than sharing a
// registry pointer with the rest of the pool.
type RegistryFactory func() *registry.Registry

// Config configures a new Pool.
type Config struct {
	// RegistryFactory builds each worker's own registry. Required.
	RegistryFactory RegistryFactory

	// CPUOverride, when greater than zero, is WORKER_THREADS: it
	// replaces the detected CPU count used to size the pool.
	CPUOverride int

	// IdleTimeout is how long a worker waits with no task before
	// retiring (if the pool is above minWorkers). Defaults to 30s.
	IdleTimeout time.Duration

	Logger    *zap.Logger
	Collector *metrics.Collector
}

// Metrics is a snapshot of the pool's current state.
type Metrics struct {
	Submitted     uint64
	Completed     uint64
	Failed        uint64
	ActiveWorkers int
	MinWorkers    int
	MaxWorkers    int
	QueueDepth    int
	QueueCapacity int
	AvgDurationMs float64
}

type job struct {
	ctx   context.Context
	task  rendertask.RenderTask
	reply chan jobResult
}

type jobResult struct {
	output rendertask.RenderOutput
	err    error
}

// Pool is the render dispatcher's worker pool.
type Pool struct {
	registryFactory RegistryFactory
	minWorkers      int
	maxWorkers      int
	idleTimeout     time.Duration
	queueCapacity   int

	logger    *zap.Logger
	collector *metrics.Collector

	mu           sync.Mutex
	workers      map[int]*worker
	nextWorkerID int
	initialized  bool
	closed       bool

	queue    chan job
	wg       sync.WaitGroup
	submitWG sync.WaitGroup

	activeWorkers atomic.Int32
	submitted     atomic.Uint64
	completed     atomic.Uint64
	failed        atomic.Uint64
	durations     *ringbuffer.Buffer
}

// New builds a Pool sized from cfg.CPUOverride (or detected CPU count):
// minWorkers = max(1, floor(cpu/2)), maxWorkers = max(2, cpu), queue
// capacity = maxWorkers * 4.
func New(cfg Config) *Pool {
	cpu := cpudetect.Detect(cfg.CPUOverride)

	min := cpu / 2
	if min < 1 {
		min = 1
	}
	max := cpu
	if max < 2 {
		max = 2
	}
	if min > max {
		min = max
	}

	idleTimeout := cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}

	queueCapacity := max * 4

	return &Pool{
		registryFactory: cfg.RegistryFactory,
		minWorkers:      min,
		maxWorkers:      max,
		idleTimeout:     idleTimeout,
		queueCapacity:   queueCapacity,
		logger:          cfg.Logger,
		collector:       cfg.Collector,
		workers:         make(map[int]*worker),
		queue:           make(chan job, queueCapacity),
		durations:       ringbuffer.New(durationSampleWindow),
	}
}

// MinWorkers reports the pool's configured minimum worker count.
func (p *Pool) MinWorkers() int { return p.minWorkers }

// MaxWorkers reports the pool's configured maximum worker count.
func (p *Pool) MaxWorkers() int { return p.maxWorkers }

// QueueCapacity reports the pool's absolute queue cap (maxWorkers * 4).
func (p *Pool) QueueCapacity() int { return p.queueCapacity }

// Initialize spawns minWorkers workers, each independently loading its own
// registry via RegistryFactory, and blocks until all of them have finished
// loading. Calling Initialize twice returns ErrAlreadyInitialized.
func (p *Pool) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return ErrAlreadyInitialized
	}
	for i := 0; i < p.minWorkers; i++ {
		if err := p.spawnWorkerLocked(); err != nil {
			return fmt.Errorf("%w: %v", ErrWorkerInitFailed, err)
		}
	}
	p.initialized = true
	return nil
}

// spawnWorkerLocked must be called with p.mu held.
func (p *Pool) spawnWorkerLocked() error {
	reg := p.registryFactory()
	if reg == nil {
		return errors.New("registry factory returned a nil registry")
	}

	p.nextWorkerID++
	id := p.nextWorkerID

	w := &worker{
		id:       id,
		pool:     p,
		registry: reg,
		stop:     make(chan struct{}),
	}
	p.workers[id] = w
	p.wg.Add(1)
	go w.run()

	if p.collector != nil {
		p.collector.WorkersSpawned.Inc()
	}
	if p.logger != nil {
		p.logger.Debug("workerpool: worker spawned", zap.Int("worker_id", id), zap.Int("pool_size", len(p.workers)))
	}
	return nil
}

// Submit enqueues task and blocks until a worker has produced a
// RenderOutput, ctx is cancelled, or the pool reports a terminal error
// (ErrQueueFull, ErrPoolClosed). A render-level failure (route render
// error) is NOT surfaced as a Go error — it comes back as a normal
// RenderOutput with Err set and an appropriate Status, exactly as an inline
// render would report it.
func (p *Pool) Submit(ctx context.Context, task rendertask.RenderTask) (rendertask.RenderOutput, error) {
	p.submitWG.Add(1)
	defer p.submitWG.Done()

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return rendertask.RenderOutput{}, ErrPoolClosed
	}

	reply := make(chan jobResult, 1)
	select {
	case p.queue <- job{ctx: ctx, task: task, reply: reply}:
		p.submitted.Add(1)
	default:
		return rendertask.RenderOutput{}, ErrQueueFull
	}
	p.maybeGrow()
	if p.collector != nil {
		p.collector.SetQueueDepth(len(p.queue))
	}

	select {
	case res := <-reply:
		if res.err != nil {
			// A transport-level failure (the worker itself died or could
			// not run the task) counts against pool health, as does a
			// timeout below. A render-level failure
			// (res.output.Err set) does not: it's the worker's own error
			// path working as designed, not a pool fault.
			p.failed.Add(1)
			return rendertask.RenderOutput{}, res.err
		}
		p.completed.Add(1)
		p.durations.Add(res.output.DurationMs)
		return res.output, nil
	case <-ctx.Done():
		p.failed.Add(1)
		return rendertask.RenderOutput{}, fmt.Errorf("%w: %v", ErrWorkerTimedOut, ctx.Err())
	}
}

// maybeGrow spawns one more worker if the pool hasn't reached maxWorkers
// and there's a backlog: with the channel-fan-out model every idle worker
// is already blocked trying to receive, so a non-empty queue means every
// live worker is currently busy.
func (p *Pool) maybeGrow() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if len(p.workers) < p.maxWorkers && len(p.queue) > 0 {
		_ = p.spawnWorkerLocked()
	}
}

func (p *Pool) retireIfAllowed(w *worker) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.workers) <= p.minWorkers {
		return false
	}
	delete(p.workers, w.id)
	if p.collector != nil {
		p.collector.WorkersRetired.Inc()
	}
	return true
}

func (p *Pool) onWorkerDied(w *worker, cause error) {
	p.mu.Lock()
	delete(p.workers, w.id)
	closed := p.closed
	shouldRespawn := !closed && len(p.workers) < p.minWorkers
	if shouldRespawn {
		_ = p.spawnWorkerLocked()
	}
	p.mu.Unlock()

	if p.collector != nil {
		p.collector.WorkersRetired.Inc()
	}
	if p.logger != nil {
		p.logger.Error("workerpool: worker died", zap.Int("worker_id", w.id), zap.Error(cause))
	}
}

// Metrics returns a snapshot of the pool's current counters and gauges.
func (p *Pool) Metrics() Metrics {
	return Metrics{
		Submitted:     p.submitted.Load(),
		Completed:     p.completed.Load(),
		Failed:        p.failed.Load(),
		ActiveWorkers: int(p.activeWorkers.Load()),
		MinWorkers:    p.minWorkers,
		MaxWorkers:    p.maxWorkers,
		QueueDepth:    len(p.queue),
		QueueCapacity: p.queueCapacity,
		AvgDurationMs: p.durations.Average(),
	}
}

// IsHealthy reports whether the pool's observed failure share since startup
// is at or below 10%. A pool that has never seen a submission is healthy.
func (p *Pool) IsHealthy() bool {
	submitted := p.submitted.Load()
	if submitted == 0 {
		return true
	}
	failed := p.failed.Load()
	return float64(failed)/float64(submitted) <= unhealthyFailureShare
}

// Shutdown stops accepting new submissions, waits for every Submit call
// already in flight to return, drains any buffered tasks to completion,
// and waits for all workers to exit. It returns ctx's error if ctx is
// cancelled before that finishes.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.submitWG.Wait()
		close(p.queue)
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
