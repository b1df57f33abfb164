package benchclient

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunRejectsInvalidPlan(t *testing.T) {
	_, err := Run(Plan{})
	if err == nil {
		t.Fatal("expected validation error for empty plan")
	}
}

func TestRunFixedRateAgainstTestServer(t *testing.T) {
	var requestCount int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt64(&requestCount, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	plan := Plan{
		RunID:       "test-fixed",
		TargetURL:   server.URL,
		Method:      "GET",
		Users:       5,
		DurationSec: 1,
		TargetRPS:   50,
		TimeoutMs:   2000,
	}

	metrics, err := Run(plan)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if metrics.TotalRequests == 0 {
		t.Error("expected some requests to be recorded")
	}
	if metrics.SuccessRequests == 0 {
		t.Error("expected some successful requests")
	}
	if atomic.LoadInt64(&requestCount) == 0 {
		t.Error("expected the test server to receive requests")
	}
}

func TestRunRecordsFailuresOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	plan := Plan{
		RunID:       "test-failures",
		TargetURL:   server.URL,
		Users:       2,
		DurationSec: 1,
		TargetRPS:   20,
		TimeoutMs:   2000,
	}

	metrics, err := Run(plan)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if metrics.FailedRequests == 0 {
		t.Error("expected failed requests to be recorded for 500 responses")
	}
	if metrics.StatusCodes[http.StatusInternalServerError] == 0 {
		t.Error("expected status code 500 to be tallied")
	}
}

func TestRunRampUpReachesFullWorkerCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	plan := Plan{
		RunID:       "test-rampup",
		TargetURL:   server.URL,
		Users:       4,
		DurationSec: 2,
		RampUpSec:   1,
		TargetRPS:   40,
		TimeoutMs:   2000,
	}

	metrics, err := Run(plan)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if metrics.ActiveWorkers != plan.Users {
		t.Errorf("expected ActiveWorkers to reach %d after ramp-up, got %d", plan.Users, metrics.ActiveWorkers)
	}
}

func TestRunComputesPercentiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	plan := Plan{
		RunID:       "test-percentiles",
		TargetURL:   server.URL,
		Users:       3,
		DurationSec: 1,
		TargetRPS:   30,
		TimeoutMs:   2000,
	}

	metrics, err := Run(plan)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if metrics.P50LatencyMs <= 0 {
		t.Error("expected a positive p50 latency")
	}
	if metrics.P99LatencyMs < metrics.P50LatencyMs {
		t.Error("expected p99 latency to be at least p50 latency")
	}
}

func TestRunTemplatesRequestBody(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 256)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	plan := Plan{
		RunID:       "test-template",
		TargetURL:   server.URL,
		Method:      "POST",
		Body:        `{"id":"{{uuid}}"}`,
		Users:       1,
		DurationSec: 1,
		TargetRPS:   5,
		TimeoutMs:   2000,
	}

	metrics, err := Run(plan)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if metrics.TotalRequests == 0 {
		t.Fatal("expected at least one request")
	}
	if gotBody == "" || gotBody == `{"id":"{{uuid}}"}` {
		t.Errorf("expected body template to be substituted, got %q", gotBody)
	}
}
