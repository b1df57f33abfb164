package workerpool

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/volcanion-labs/ssr-dispatcher/internal/registry"
	"github.com/volcanion-labs/ssr-dispatcher/internal/renderstage"
	"github.com/volcanion-labs/ssr-dispatcher/internal/rendertask"
)

// worker is one goroutine-backed render worker. It owns its own registry,
// loaded independently at spawn time, and never touches another worker's
// state or the pool's internals directly — everything it needs arrives on
// the shared task channel and every result leaves on a per-task reply
// channel.
type worker struct {
	id       int
	pool     *Pool
	registry *registry.Registry
	stop     chan struct{}
}

func (w *worker) run() {
	defer w.pool.wg.Done()
	w.pool.activeWorkers.Add(1)
	if w.pool.collector != nil {
		w.pool.collector.SetActiveWorkers(int(w.pool.activeWorkers.Load()))
	}
	defer func() {
		w.pool.activeWorkers.Add(-1)
		if w.pool.collector != nil {
			w.pool.collector.SetActiveWorkers(int(w.pool.activeWorkers.Load()))
		}
	}()

	idle := time.NewTimer(w.pool.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case j, ok := <-w.pool.queue:
			if !ok {
				return
			}
			drainTimer(idle)
			if dead, cause := w.process(j); dead {
				w.pool.onWorkerDied(w, cause)
				return
			}
			idle.Reset(w.pool.idleTimeout)

		case <-w.stop:
			return

		case <-idle.C:
			if w.pool.retireIfAllowed(w) {
				return
			}
			idle.Reset(w.pool.idleTimeout)
		}
	}
}

// process executes one task and replies on j.reply exactly once. It returns
// dead=true if a panic reached this function, meaning this worker's
// goroutine must exit rather than loop again; such a panic is recovered
// here and never escapes to the pool or the submitter. A panic raised
// inside a route's Renderer does not reach here: renderstage.Render
// recovers it and reports it as a failed render (a 500 RenderOutput).
func (w *worker) process(j job) (dead bool, cause error) {
	defer func() {
		if r := recover(); r != nil {
			cause = fmt.Errorf("%w: %v\n%s", ErrWorkerDied, r, debug.Stack())
			j.reply <- jobResult{err: cause}
			dead = true
		}
	}()

	route, ok := w.registry.ByName(j.task.Route)
	if !ok {
		j.reply <- jobResult{err: fmt.Errorf("workerpool: worker %d has no route %q loaded", w.id, j.task.Route)}
		return false, nil
	}

	input, err := rendertask.Reconstruct(j.task)
	if err != nil {
		j.reply <- jobResult{err: err}
		return false, nil
	}

	renderCtx := registry.RenderContext{
		URL:    input.URL.String(),
		Method: input.Method,
		Locals: input.Locals,
	}
	html, dur, rerr := renderstage.Render(j.ctx, route, input.Data, renderCtx)

	out := rendertask.RenderOutput{
		WorkerID:   w.id,
		DurationMs: float64(dur.Milliseconds()),
	}
	if rerr != nil {
		out.Status = 500
		out.Reason = "Internal Server Error"
		out.Body = html
		out.Err = rerr.Error()
	} else {
		out.Status = 200
		out.Reason = "OK"
		out.Body = html
	}

	j.reply <- jobResult{output: out}
	return false, nil
}

func drainTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
