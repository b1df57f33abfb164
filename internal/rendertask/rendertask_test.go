package rendertask

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAssembleGET(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test/simple?x=1", nil)
	req.Host = "example.com"

	task, err := Assemble(req, "simple", nil, map[string]any{"request_id": "abc"})
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if task.URL != "http://example.com/test/simple?x=1" {
		t.Fatalf("unexpected URL: %s", task.URL)
	}
	if task.Method != http.MethodGet {
		t.Fatalf("unexpected method: %s", task.Method)
	}
	if task.Body != nil {
		t.Fatalf("expected no body for GET, got %q", task.Body)
	}
	if task.Locals["request_id"] != "abc" {
		t.Fatalf("locals not carried through: %v", task.Locals)
	}
}

func TestAssembleRestoresBodyForDownstreamReaders(t *testing.T) {
	body := strings.NewReader(`{"ping":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/echo", body)

	task, err := Assemble(req, "echo", nil, nil)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if string(task.Body) != `{"ping":true}` {
		t.Fatalf("unexpected captured body: %s", task.Body)
	}

	// Assemble must leave r.Body readable for any subsequent code.
	remaining, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("body not restored: %v", err)
	}
	if string(remaining) != `{"ping":true}` {
		t.Fatalf("restored body mismatch: %s", remaining)
	}
}

func TestAssembleBodyConsumed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/echo", nil)
	req.Body = nil

	_, err := Assemble(req, "echo", nil, nil)
	if !errors.Is(err, ErrBodyConsumed) {
		t.Fatalf("expected ErrBodyConsumed, got %v", err)
	}
}

func TestAssembleMalformedRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.URL.Path = ""

	_, err := Assemble(req, "r", nil, nil)
	if !errors.Is(err, ErrMalformedRequest) {
		t.Fatalf("expected ErrMalformedRequest, got %v", err)
	}
}

func TestReconstructRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test/simple", nil)
	req.Host = "host.local"

	task, err := Assemble(req, "simple", []byte(`{"n":1}`), map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	input, err := Reconstruct(task)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if input.URL.Host != "host.local" {
		t.Fatalf("unexpected host: %s", input.URL.Host)
	}
	if string(input.Data) != `{"n":1}` {
		t.Fatalf("data mismatch: %s", input.Data)
	}
	if input.Locals["k"] != "v" {
		t.Fatalf("locals mismatch: %v", input.Locals)
	}
}

func TestReconstructMalformedURL(t *testing.T) {
	_, err := Reconstruct(RenderTask{URL: "http://[::1"})
	if !errors.Is(err, ErrMalformedRequest) {
		t.Fatalf("expected ErrMalformedRequest, got %v", err)
	}
}
