package benchclient

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/volcanion-labs/ssr-dispatcher/internal/domain/model"
)

// ErrInvalidPlan is returned by Run when plan is missing required fields.
var ErrInvalidPlan = errors.New("benchclient: invalid plan")

// Validate checks that plan has everything a scheduler needs to run.
func (p *Plan) Validate() error {
	if p.TargetURL == "" {
		return fmt.Errorf("%w: plan.TargetURL is required", ErrInvalidPlan)
	}
	if p.Users <= 0 {
		return fmt.Errorf("%w: plan.Users must be positive", ErrInvalidPlan)
	}
	if p.DurationSec <= 0 {
		return fmt.Errorf("%w: plan.DurationSec must be positive", ErrInvalidPlan)
	}
	if p.Method == "" {
		p.Method = "GET"
	}
	if p.TimeoutMs <= 0 {
		p.TimeoutMs = 10_000
	}
	if p.RatePattern == "" {
		p.RatePattern = RatePatternFixed
	}
	return nil
}

// Option configures a Run call.
type Option func(*scheduler)

// WithLogger attaches a zap logger to the run's progress reporting.
func WithLogger(logger *zap.Logger) Option {
	return func(s *scheduler) { s.logger = logger }
}

// WithSampleFunc registers a callback invoked with a metrics snapshot every
// reporting tick, letting a caller (e.g. a CLI watch command) render live
// progress without polling.
func WithSampleFunc(fn func(*model.Metrics)) Option {
	return func(s *scheduler) { s.onSample = fn }
}

// Run executes plan to completion and returns the aggregated metrics. It
// blocks for roughly plan.DurationSec seconds (ramp-up included), the one way
// cmd/bench drives a benchmark run in-process rather than through an HTTP
// API: there is no separate test-run server to submit the plan to, so the
// CLI links this package directly and reports on the result itself.
func Run(plan Plan, opts ...Option) (*model.Metrics, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if plan.RunID == "" {
		plan.RunID = defaultRunID()
	}

	sched := newScheduler(&plan, nil)
	for _, opt := range opts {
		opt(sched)
	}

	return sched.run(), nil
}

func defaultRunID() string {
	return "run-" + time.Now().UTC().Format("20060102T150405Z")
}
