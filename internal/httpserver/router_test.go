package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/volcanion-labs/ssr-dispatcher/internal/auth"
	"github.com/volcanion-labs/ssr-dispatcher/internal/benchstore"
	"github.com/volcanion-labs/ssr-dispatcher/internal/config"
	"github.com/volcanion-labs/ssr-dispatcher/internal/dispatcher"
	"github.com/volcanion-labs/ssr-dispatcher/internal/metrics"
	"github.com/volcanion-labs/ssr-dispatcher/internal/mockapi"
	"github.com/volcanion-labs/ssr-dispatcher/internal/registry"
	"github.com/volcanion-labs/ssr-dispatcher/internal/workerpool"
)

var (
	sharedTestCollector     *metrics.Collector
	sharedTestCollectorOnce sync.Once
)

// getSharedTestCollector returns a singleton collector shared across all
// tests in this package, mirroring the teacher's engine test helper — it
// prevents duplicate Prometheus metric registration panics from repeated
// metrics.NewCollector() calls against the default registry.
func getSharedTestCollector() *metrics.Collector {
	sharedTestCollectorOnce.Do(func() {
		sharedTestCollector = metrics.NewCollector()
	})
	return sharedTestCollector
}

func newTestDeps(t *testing.T) Deps {
	t.Helper()

	reg := registry.New()
	if err := mockapi.Register(reg); err != nil {
		t.Fatalf("mockapi.Register: %v", err)
	}
	reg.Freeze()

	logger := zap.NewNop()

	userRepo, err := auth.NewMemoryUserRepository("admin", "test-password")
	if err != nil {
		t.Fatalf("NewMemoryUserRepository: %v", err)
	}

	store, err := benchstore.NewJSONFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewJSONFileStore: %v", err)
	}

	cfg := &config.Config{
		Environment:        "test",
		SSRMode:            config.ModeTraditional,
		AuthEnabled:        false,
		RateLimitEnabled:   false,
		RateLimitPerSecond: 100,
	}

	disp := dispatcher.New(dispatcher.Config{
		Registry: reg,
		Logger:   logger,
		Mode:     config.ModeTraditional,
	})

	pool := workerpool.New(workerpool.Config{
		RegistryFactory: func() *registry.Registry { return reg },
		Logger:          logger,
	})

	return Deps{
		Config:        cfg,
		Logger:        logger,
		Collector:     getSharedTestCollector(),
		Dispatcher:    disp,
		Pool:          pool,
		BenchStore:    store,
		JWTService:    auth.NewJWTService("test-secret-test-secret-test-secret", time.Hour),
		APIKeyService: auth.NewAPIKeyService(),
		UserRepo:      userRepo,
	}
}

func TestHealthz(t *testing.T) {
	r := New(newTestDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListBenchRunsEmpty(t *testing.T) {
	r := New(newTestDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/api/bench-runs", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAPIMetricsJSON(t *testing.T) {
	r := New(newTestDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-cache" {
		t.Fatalf("expected Cache-Control: no-cache, got %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got == "" {
		t.Fatalf("expected a Content-Type header")
	}
	for _, field := range []string{`"mode"`, `"initialized"`, `"threads"`, `"queueSize"`, `"metrics"`} {
		if !strings.Contains(rec.Body.String(), field) {
			t.Fatalf("expected body to contain %s, got %s", field, rec.Body.String())
		}
	}
}

func TestAPIServerInfo(t *testing.T) {
	r := New(newTestDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/api/server-info", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"mode":"traditional"`) {
		t.Fatalf("expected mode in body, got %s", rec.Body.String())
	}
}

func TestPrometheusMetricsEndpoint(t *testing.T) {
	r := New(newTestDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminPoolStats(t *testing.T) {
	r := New(newTestDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/pool/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDispatcherFallthrough(t *testing.T) {
	r := New(newTestDeps(t))

	req := httptest.NewRequest(http.MethodGet, "/nonexistent-route", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from dispatcher fallthrough, got %d", rec.Code)
	}
}
