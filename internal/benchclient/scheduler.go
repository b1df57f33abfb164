package benchclient

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/volcanion-labs/ssr-dispatcher/internal/domain/model"
	"github.com/volcanion-labs/ssr-dispatcher/internal/ringbuffer"
)

// scheduler drives one run: it ramps workers up according to plan.RampUpSec,
// feeds them request tokens at the rate plan.RatePattern describes, and
// reports live metrics until plan.DurationSec elapses.
type scheduler struct {
	plan    *Plan
	metrics *model.Metrics
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	workers []*worker

	transport http.RoundTripper

	// onSample, if set, is called every reporting tick with a metrics
	// snapshot; cmd/bench's watch mode uses this to drive a progress bar.
	onSample func(*model.Metrics)
}

func newScheduler(plan *Plan, logger *zap.Logger) *scheduler {
	return &scheduler{
		plan:      plan,
		metrics:   model.NewMetrics(plan.RunID),
		logger:    logger,
		transport: &http.Transport{MaxIdleConnsPerHost: plan.Users + 1},
	}
}

func (s *scheduler) run() *model.Metrics {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), time.Duration(s.plan.DurationSec)*time.Second)
	defer s.cancel()

	tokens := make(chan struct{}, s.plan.Users*10)

	var rampWG sync.WaitGroup
	rampWG.Add(1)
	go func() {
		defer rampWG.Done()
		s.rampWorkers(tokens)
	}()

	reportDone := make(chan struct{})
	go func() {
		defer close(reportDone)
		s.reportLoop()
	}()

	s.generate(tokens)
	rampWG.Wait()
	s.wg.Wait()
	<-reportDone

	s.finalize()
	return s.metrics
}

// rampWorkers spawns plan.Users workers, spread evenly over plan.RampUpSec
// seconds (immediately if RampUpSec is 0).
func (s *scheduler) rampWorkers(tokens <-chan struct{}) {
	if s.plan.RampUpSec <= 0 {
		for i := 0; i < s.plan.Users; i++ {
			s.spawnWorker(i, tokens)
		}
		s.metrics.SetActiveWorkers(s.plan.Users)
		return
	}

	interval := time.Second
	perTick := s.plan.Users / s.plan.RampUpSec
	if perTick < 1 {
		perTick = 1
		interval = time.Duration(s.plan.RampUpSec*1000/s.plan.Users) * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	spawned := 0
	for spawned < s.plan.Users {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			for i := 0; i < perTick && spawned < s.plan.Users; i++ {
				s.spawnWorker(spawned, tokens)
				spawned++
			}
			s.metrics.SetActiveWorkers(spawned)
		}
	}
}

func (s *scheduler) spawnWorker(id int, tokens <-chan struct{}) {
	w := newWorker(id, s.plan, s.transport, s.metrics, s.logger)
	s.mu.Lock()
	s.workers = append(s.workers, w)
	s.mu.Unlock()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		w.run(s.ctx, tokens)
	}()
}

// generate feeds request tokens according to plan.RatePattern, closing
// tokens once the run's context is done.
func (s *scheduler) generate(tokens chan<- struct{}) {
	defer close(tokens)

	switch s.plan.RatePattern {
	case RatePatternStep:
		s.generateSteps(tokens, s.plan.RateSteps, true)
	case RatePatternSpike:
		s.generateSpike(tokens)
	case RatePatternRamp:
		s.generateRamp(tokens)
	default:
		s.generateFixed(tokens)
	}
}

func (s *scheduler) generateFixed(tokens chan<- struct{}) {
	if s.plan.TargetRPS <= 0 {
		// Unlimited: hand out a token whenever a worker is ready for one.
		for {
			select {
			case <-s.ctx.Done():
				return
			case tokens <- struct{}{}:
			}
		}
	}
	interval := time.Second / time.Duration(s.plan.TargetRPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			trySend(tokens)
		}
	}
}

func (s *scheduler) generateSteps(tokens chan<- struct{}, steps []RateStep, maintainLast bool) {
	if len(steps) == 0 {
		s.generateFixed(tokens)
		return
	}
	for _, step := range steps {
		if s.runAtRateFor(tokens, step.RPS, time.Duration(step.DurationSec)*time.Second) {
			return
		}
	}
	if maintainLast {
		s.runAtRateUntilDone(tokens, steps[len(steps)-1].RPS)
	}
}

func (s *scheduler) generateSpike(tokens chan<- struct{}) {
	if len(s.plan.RateSteps) < 2 {
		s.generateFixed(tokens)
		return
	}
	base, spike := s.plan.RateSteps[0], s.plan.RateSteps[1]
	if s.runAtRateFor(tokens, base.RPS, time.Duration(base.DurationSec)*time.Second) {
		return
	}
	if s.runAtRateFor(tokens, spike.RPS, time.Duration(spike.DurationSec)*time.Second) {
		return
	}
	s.runAtRateUntilDone(tokens, base.RPS)
}

func (s *scheduler) generateRamp(tokens chan<- struct{}) {
	endRPS := s.plan.TargetRPS
	if endRPS <= 0 {
		endRPS = 100
	}
	rampSeconds := s.plan.DurationSec / 2
	if rampSeconds < 1 {
		rampSeconds = 1
	}
	step := float64(endRPS-1) / float64(rampSeconds)
	currentRPS := 1.0

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	elapsed := 0

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			elapsed++
			if elapsed <= rampSeconds {
				currentRPS += step
			}
			target := int(currentRPS)
			if target > 0 {
				s.sendForDuration(tokens, time.Second/time.Duration(target), time.Second)
			}
		}
	}
}

// runAtRateFor sends tokens at rps for duration, returning true if the run's
// context ended before duration elapsed.
func (s *scheduler) runAtRateFor(tokens chan<- struct{}, rps int, duration time.Duration) bool {
	if rps <= 0 {
		select {
		case <-s.ctx.Done():
			return true
		case <-time.After(duration):
			return false
		}
	}
	ticker := time.NewTicker(time.Second / time.Duration(rps))
	defer ticker.Stop()
	timeout := time.After(duration)
	for {
		select {
		case <-s.ctx.Done():
			return true
		case <-timeout:
			return false
		case <-ticker.C:
			trySend(tokens)
		}
	}
}

func (s *scheduler) runAtRateUntilDone(tokens chan<- struct{}, rps int) {
	if rps <= 0 {
		<-s.ctx.Done()
		return
	}
	ticker := time.NewTicker(time.Second / time.Duration(rps))
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			trySend(tokens)
		}
	}
}

func (s *scheduler) sendForDuration(tokens chan<- struct{}, interval, duration time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	timeout := time.After(duration)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timeout:
			return
		case <-ticker.C:
			trySend(tokens)
		}
	}
}

func trySend(tokens chan<- struct{}) {
	select {
	case tokens <- struct{}{}:
	default:
	}
}

func (s *scheduler) reportLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.metrics.UpdateLiveMetrics()
			if s.onSample != nil {
				s.onSample(s.metrics.GetSnapshot())
			}
			if s.logger != nil {
				snap := s.metrics.GetSnapshot()
				s.logger.Info("benchclient: progress",
					zap.String("run_id", snap.RunID),
					zap.Int64("total_requests", snap.TotalRequests),
					zap.Float64("current_rps", snap.CurrentRPS),
				)
			}
		}
	}
}

func (s *scheduler) finalize() {
	s.mu.Lock()
	all := make([]float64, 0)
	for _, w := range s.workers {
		all = append(all, w.latencies()...)
	}
	s.mu.Unlock()

	if len(all) == 0 {
		return
	}

	s.metrics.Mu.Lock()
	s.metrics.P50LatencyMs = ringbuffer.Percentile(all, 0.50)
	s.metrics.P75LatencyMs = ringbuffer.Percentile(all, 0.75)
	s.metrics.P95LatencyMs = ringbuffer.Percentile(all, 0.95)
	s.metrics.P99LatencyMs = ringbuffer.Percentile(all, 0.99)
	sum := 0.0
	for _, v := range all {
		sum += v
	}
	s.metrics.AvgLatencyMs = sum / float64(len(all))
	if s.metrics.TotalDurationMs > 0 {
		s.metrics.RequestsPerSec = float64(s.metrics.TotalRequests) / (float64(s.metrics.TotalDurationMs) / 1000.0)
	}
	s.metrics.Mu.Unlock()
}
