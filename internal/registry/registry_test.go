package registry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func renderStub(ctx context.Context, data json.RawMessage, renderCtx RenderContext) (string, error) {
	return "<html></html>", nil
}

func TestRegisterAndMatch(t *testing.T) {
	r := New()
	if err := r.Register(RouteDefinition{
		Name:     "user-profile",
		Pattern:  `^/users/(?P<id>[^/]+)$`,
		Renderer: renderStub,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.Freeze()

	route, captures, ok := r.Match("/users/42")
	if !ok {
		t.Fatal("expected match")
	}
	if route.Name != "user-profile" {
		t.Fatalf("unexpected route: %s", route.Name)
	}
	if captures["id"] != "42" {
		t.Fatalf("unexpected captures: %v", captures)
	}
}

func TestMatchIsOrderSensitive(t *testing.T) {
	r := New()
	_ = r.Register(RouteDefinition{Name: "specific", Pattern: `^/api/echo$`, Renderer: renderStub})
	_ = r.Register(RouteDefinition{Name: "catchall", Pattern: `^/api/.*$`, Renderer: renderStub})
	r.Freeze()

	route, _, ok := r.Match("/api/echo")
	if !ok || route.Name != "specific" {
		t.Fatalf("expected first registered match to win, got %+v ok=%v", route, ok)
	}
}

func TestMatchNoRoute(t *testing.T) {
	r := New()
	_ = r.Register(RouteDefinition{Name: "only", Pattern: `^/only$`, Renderer: renderStub})
	r.Freeze()

	if _, _, ok := r.Match("/nope"); ok {
		t.Fatal("expected no match")
	}
}

func TestRegisterAfterFreezeFails(t *testing.T) {
	r := New()
	r.Freeze()
	err := r.Register(RouteDefinition{Name: "late", Pattern: `^/late$`, Renderer: renderStub})
	if !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
}

func TestDuplicateRouteName(t *testing.T) {
	r := New()
	_ = r.Register(RouteDefinition{Name: "dup", Pattern: `^/a$`, Renderer: renderStub})
	err := r.Register(RouteDefinition{Name: "dup", Pattern: `^/b$`, Renderer: renderStub})
	if !errors.Is(err, ErrDuplicateRoute) {
		t.Fatalf("expected ErrDuplicateRoute, got %v", err)
	}
}

func TestInvalidPatternRejected(t *testing.T) {
	r := New()
	err := r.Register(RouteDefinition{Name: "bad", Pattern: `^(unterminated`, Renderer: renderStub})
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestByName(t *testing.T) {
	r := New()
	_ = r.Register(RouteDefinition{Name: "home", Pattern: `^/$`, Renderer: renderStub, Metadata: Metadata{Workload: WorkloadSimple}})
	r.Freeze()

	route, ok := r.ByName("home")
	if !ok {
		t.Fatal("expected to find route by name")
	}
	if route.Metadata.Workload != WorkloadSimple {
		t.Fatalf("unexpected workload: %v", route.Metadata.Workload)
	}
	if _, ok := r.ByName("missing"); ok {
		t.Fatal("expected no match for missing route")
	}
}
