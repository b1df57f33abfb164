// Package registry holds the ordered list of routes the dispatcher can
// render, each compiled once and matched in registration order. A Registry
// is built, then frozen — after Freeze, Register always fails, the same
// construct-then-freeze shape the teacher uses for its repositories.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ErrFrozen is returned by Register once the registry has been frozen.
var ErrFrozen = errors.New("registry: frozen, no further routes may be registered")

// ErrDuplicateRoute is returned when two routes share a name.
var ErrDuplicateRoute = errors.New("registry: duplicate route name")

// Workload classifies the kind of work a route's render performs, used by
// the dispatcher's hybrid classifier as a per-route tiebreak alongside its
// path-based heuristics.
type Workload string

const (
	WorkloadSimple       Workload = "simple"
	WorkloadIOHeavy       Workload = "io-heavy"
	WorkloadCPUIntensive Workload = "cpu-intensive"
	WorkloadMixed        Workload = "mixed"
)

// Metadata carries route-level hints that don't affect matching.
type Metadata struct {
	Workload Workload
}

// RenderContext is the per-render context handed to a Renderer: everything
// about the originating request a render needs that isn't the fetched data
// itself.
type RenderContext struct {
	URL    string
	Method string
	Locals map[string]any
}

// DataFetcher fetches the data a route's render needs. A nil DataFetcher
// means the route renders with no external data.
type DataFetcher func(ctx context.Context, url string, locals map[string]any) (json.RawMessage, error)

// Renderer turns fetched data into HTML. It must be a pure function of its
// inputs — no shared mutable state may cross from one invocation to the
// next.
type Renderer func(ctx context.Context, data json.RawMessage, renderCtx RenderContext) (string, error)

// RouteDefinition is one entry in the registry: a compiled pattern plus the
// data-fetch and render behavior for requests that match it.
type RouteDefinition struct {
	Name        string
	Pattern     string
	DataFetcher DataFetcher
	Renderer    Renderer
	Metadata    Metadata

	compiled *regexp.Regexp
}

// Registry is an ordered, append-only (until frozen) list of routes.
type Registry struct {
	routes []*RouteDefinition
	byName map[string]*RouteDefinition
	frozen bool
}

// New returns an empty, unfrozen registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*RouteDefinition)}
}

// Register compiles and appends a route. Routes are matched in the order
// they were registered, so ordering registrations is how callers express
// priority between overlapping patterns.
func (r *Registry) Register(def RouteDefinition) error {
	if r.frozen {
		return fmt.Errorf("%w: %q", ErrFrozen, def.Name)
	}
	if def.Name == "" {
		return errors.New("registry: route name is required")
	}
	if _, exists := r.byName[def.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRoute, def.Name)
	}
	compiled, err := regexp.Compile(def.Pattern)
	if err != nil {
		return fmt.Errorf("registry: invalid pattern for route %q: %w", def.Name, err)
	}

	rd := def
	rd.compiled = compiled
	r.routes = append(r.routes, &rd)
	r.byName[rd.Name] = &rd
	return nil
}

// Freeze marks the registry read-only. Safe to call more than once.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Match walks the registry in registration order and returns the first
// route whose pattern matches path, along with any named captures. The
// second return value is nil if ok is false.
func (r *Registry) Match(path string) (route *RouteDefinition, captures map[string]string, ok bool) {
	for _, rt := range r.routes {
		m := rt.compiled.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		names := rt.compiled.SubexpNames()
		captures = make(map[string]string, len(names))
		for i, name := range names {
			if i == 0 || name == "" {
				continue
			}
			captures[name] = m[i]
		}
		return rt, captures, true
	}
	return nil, nil, false
}

// ByName looks up a registered route by its name.
func (r *Registry) ByName(name string) (*RouteDefinition, bool) {
	rt, ok := r.byName[name]
	return rt, ok
}

// Routes returns a copy of the registered routes in match order.
func (r *Registry) Routes() []*RouteDefinition {
	out := make([]*RouteDefinition, len(r.routes))
	copy(out, r.routes)
	return out
}

// Len reports how many routes are registered.
func (r *Registry) Len() int {
	return len(r.routes)
}
