// Package mockapi registers the dispatcher's built-in demonstration routes:
// one for each bucket the hybrid classifier recognizes by path shape
// (simple, I/O-heavy, CPU-intensive). Registering them from the same
// Routes() function in the main process and in every worker's warmup step
// is what makes the "identical load in every worker" invariant concretely
// checkable end to end.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/volcanion-labs/ssr-dispatcher/internal/registry"
	"github.com/volcanion-labs/ssr-dispatcher/internal/template"
)

// dynamicEngine generates the synthetic per-request fields ApiDynamic's data
// fetcher embeds in its JSON payload. It's shared process-wide (the engine
// itself is safe for concurrent use) and seeded fixed rather than from
// wall-clock time so a worker and the inline path render byte-identical
// output given the same data, per the worker-inline equivalence property.
var dynamicEngine = template.New(1)

// Register adds every mock route to reg. Call it once per registry build —
// the main process's own registry and each worker's independently loaded
// registry both call this from the same RegistryFactory.
func Register(reg *registry.Registry) error {
	for _, def := range Routes() {
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("mockapi: %w", err)
		}
	}
	return nil
}

// Routes returns the mock route definitions, in the fixed order they must
// be registered: simple first (most specific path, `/`), then the
// I/O-heavy API routes, then the CPU-intensive one.
func Routes() []registry.RouteDefinition {
	return []registry.RouteDefinition{
		simpleRoute("Root", `^/$`),
		simpleRoute("SimpleTest", `^/test/simple$`),
		ioHeavyEchoRoute(),
		ioHeavyMixedRoute(),
		dynamicRoute(),
		cpuIntensiveRoute(),
	}
}

// dynamicRoute exercises the io-heavy classifier bucket with a fetcher whose
// payload varies per request (a fresh UUID and a random order id), the way a
// real upstream API handler would generate per-request identifiers.
func dynamicRoute() registry.RouteDefinition {
	return registry.RouteDefinition{
		Name:     "ApiDynamic",
		Pattern:  `^/api/dynamic$`,
		Metadata: registry.Metadata{Workload: registry.WorkloadIOHeavy},
		DataFetcher: func(ctx context.Context, url string, locals map[string]any) (json.RawMessage, error) {
			select {
			case <-time.After(10 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			payload := map[string]any{
				"requestId": dynamicEngine.Process("{{uuid}}"),
				"orderId":   dynamicEngine.Process("ORD-{{random:6}}"),
				"fetchedAt": dynamicEngine.Process("{{timestamp}}"),
			}
			return json.Marshal(payload)
		},
		Renderer: func(ctx context.Context, data json.RawMessage, rc registry.RenderContext) (string, error) {
			return fmt.Sprintf("<!DOCTYPE html><html><body><pre>%s</pre></body></html>", data), nil
		},
	}
}

func simpleRoute(name, pattern string) registry.RouteDefinition {
	return registry.RouteDefinition{
		Name:    name,
		Pattern: pattern,
		Metadata: registry.Metadata{Workload: registry.WorkloadSimple},
		Renderer: func(ctx context.Context, data json.RawMessage, rc registry.RenderContext) (string, error) {
			return "<!DOCTYPE html><html><body>ok</body></html>", nil
		},
	}
}

// ioHeavyEchoRoute simulates an upstream call that dominates the request's
// latency: the data fetcher sleeps to stand in for network I/O, and the
// renderer does nothing but serialize whatever came back.
func ioHeavyEchoRoute() registry.RouteDefinition {
	return registry.RouteDefinition{
		Name:     "ApiEcho",
		Pattern:  `^/api/echo$`,
		Metadata: registry.Metadata{Workload: registry.WorkloadIOHeavy},
		DataFetcher: func(ctx context.Context, url string, locals map[string]any) (json.RawMessage, error) {
			select {
			case <-time.After(25 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return json.Marshal(map[string]any{
				"url":   url,
				"echo":  true,
				"stamp": time.Now().UnixMilli(),
			})
		},
		Renderer: func(ctx context.Context, data json.RawMessage, rc registry.RenderContext) (string, error) {
			return string(data), nil
		},
	}
}

// ioHeavyMixedRoute exercises the classifier's "mixed" substring rule: it
// both fetches data (I/O-bound) and does a modest amount of rendering work.
func ioHeavyMixedRoute() registry.RouteDefinition {
	return registry.RouteDefinition{
		Name:     "ApiMixed",
		Pattern:  `^/api/mixed$`,
		Metadata: registry.Metadata{Workload: registry.WorkloadMixed},
		DataFetcher: func(ctx context.Context, url string, locals map[string]any) (json.RawMessage, error) {
			select {
			case <-time.After(15 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return json.Marshal(map[string]any{"mixed": true})
		},
		Renderer: func(ctx context.Context, data json.RawMessage, rc registry.RenderContext) (string, error) {
			return fmt.Sprintf("<!DOCTYPE html><html><body>%s</body></html>", data), nil
		},
	}
}

// cpuIntensiveRoute simulates a renderer whose cost is in HTML generation
// itself, not any I/O: it does a bounded amount of pure CPU work (summing
// a fixed-seed stream of random integers into a checksum) rather than
// sleeping.
func cpuIntensiveRoute() registry.RouteDefinition {
	return registry.RouteDefinition{
		Name:     "CPUIntensive",
		Pattern:  `^/test/cpu-intensive$`,
		Metadata: registry.Metadata{Workload: registry.WorkloadCPUIntensive},
		Renderer: func(ctx context.Context, data json.RawMessage, rc registry.RenderContext) (string, error) {
			return busyRenderHTML(), nil
		},
	}
}

const cpuBusyIterations = 200_000

// busyRenderHTML burns a bounded, deterministic amount of CPU summing
// cpuBusyIterations random integers and returns a page carrying the sum,
// standing in for a renderer whose cost is computation rather than
// waiting on anything.
func busyRenderHTML() string {
	r := rand.New(rand.NewSource(1))
	sum := 0
	for i := 0; i < cpuBusyIterations; i++ {
		sum += r.Intn(97)
	}
	return fmt.Sprintf("<!DOCTYPE html><html><body>cpu-intensive render (checksum %d)</body></html>", sum)
}
