package mockapi

import (
	"context"
	"testing"

	"github.com/volcanion-labs/ssr-dispatcher/internal/registry"
)

func buildRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	if err := Register(r); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.Freeze()
	return r
}

func TestRoutesRegisterWithoutConflict(t *testing.T) {
	r := buildRegistry(t)
	if r.Len() != len(Routes()) {
		t.Fatalf("expected %d routes registered, got %d", len(Routes()), r.Len())
	}
}

func TestSimpleRouteMatches(t *testing.T) {
	r := buildRegistry(t)
	route, _, ok := r.Match("/test/simple")
	if !ok {
		t.Fatal("expected /test/simple to match")
	}
	html, err := route.Renderer(context.Background(), nil, registry.RenderContext{})
	if err != nil {
		t.Fatalf("Renderer: %v", err)
	}
	if html == "" {
		t.Fatal("expected non-empty rendered HTML")
	}
}

func TestIOHeavyEchoFetchesThenRenders(t *testing.T) {
	r := buildRegistry(t)
	route, _, ok := r.Match("/api/echo")
	if !ok {
		t.Fatal("expected /api/echo to match")
	}
	data, err := route.DataFetcher(context.Background(), "http://example.com/api/echo", nil)
	if err != nil {
		t.Fatalf("DataFetcher: %v", err)
	}
	html, err := route.Renderer(context.Background(), data, registry.RenderContext{})
	if err != nil {
		t.Fatalf("Renderer: %v", err)
	}
	if html != string(data) {
		t.Fatalf("expected renderer to echo fetched data verbatim, got %q", html)
	}
}

func TestIOHeavyEchoRespectsContextCancellation(t *testing.T) {
	r := buildRegistry(t)
	route, _, _ := r.Match("/api/echo")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := route.DataFetcher(ctx, "http://example.com/api/echo", nil); err == nil {
		t.Fatal("expected a cancelled context to fail the fetch")
	}
}

func TestCPUIntensiveRouteIsDeterministic(t *testing.T) {
	r := buildRegistry(t)
	route, _, ok := r.Match("/test/cpu-intensive")
	if !ok {
		t.Fatal("expected /test/cpu-intensive to match")
	}
	first, err := route.Renderer(context.Background(), nil, registry.RenderContext{})
	if err != nil {
		t.Fatalf("Renderer: %v", err)
	}
	second, err := route.Renderer(context.Background(), nil, registry.RenderContext{})
	if err != nil {
		t.Fatalf("Renderer: %v", err)
	}
	if first != second {
		t.Fatalf("expected deterministic output from a fixed-seed busy render, got %q then %q", first, second)
	}
}

func TestDynamicRouteVariesPerFetch(t *testing.T) {
	r := buildRegistry(t)
	route, _, ok := r.Match("/api/dynamic")
	if !ok {
		t.Fatal("expected /api/dynamic to match")
	}
	first, err := route.DataFetcher(context.Background(), "http://example.com/api/dynamic", nil)
	if err != nil {
		t.Fatalf("DataFetcher: %v", err)
	}
	second, err := route.DataFetcher(context.Background(), "http://example.com/api/dynamic", nil)
	if err != nil {
		t.Fatalf("DataFetcher: %v", err)
	}
	if string(first) == string(second) {
		t.Fatal("expected successive fetches to produce distinct request ids")
	}
	html, err := route.Renderer(context.Background(), first, registry.RenderContext{})
	if err != nil {
		t.Fatalf("Renderer: %v", err)
	}
	if html == "" {
		t.Fatal("expected non-empty rendered HTML")
	}
}

func TestRootMatchesBeforeOtherSimpleRoutes(t *testing.T) {
	r := buildRegistry(t)
	route, _, ok := r.Match("/")
	if !ok {
		t.Fatal("expected / to match")
	}
	if route.Name != "Root" {
		t.Fatalf("expected Root to match first for /, got %q", route.Name)
	}
}
