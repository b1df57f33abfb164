// Package rendertask defines the value contract that crosses the boundary
// between the dispatcher and a render worker: the immutable request snapshot
// sent in (RenderTask) and the reply sent back (RenderOutput).
package rendertask

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Sentinel errors surfaced while assembling or reconstructing a task.
var (
	// ErrMalformedRequest indicates the inbound request could not be
	// reduced to a well-formed absolute URL.
	ErrMalformedRequest = errors.New("rendertask: malformed request")

	// ErrBodyConsumed indicates a non-GET/HEAD request whose body was
	// already drained (or never available) before assembly.
	ErrBodyConsumed = errors.New("rendertask: request body already consumed")
)

// RenderTask is the complete, self-contained description of one render:
// everything a worker needs to reproduce the request without a back-channel
// to the original *http.Request. Every field is a plain value or a copy —
// nothing here points back into caller-owned memory.
type RenderTask struct {
	// Route is the name of the RouteDefinition this task matched.
	Route string `json:"route"`

	// URL is the request's absolute URL as a string.
	URL string `json:"url"`

	// Method is the HTTP method of the originating request.
	Method string `json:"method"`

	// Headers holds one concatenated value per header name.
	Headers map[string]string `json:"headers"`

	// Body is the raw request body, captured once at assembly time. Nil
	// for GET/HEAD requests.
	Body []byte `json:"body,omitempty"`

	// Data is the opaque value produced by the route's data stage. It
	// travels as already-serialized JSON so handing it to a worker is a
	// cheap byte copy, never a reflection-based deep clone.
	Data json.RawMessage `json:"data,omitempty"`

	// Locals carries dispatcher-derived values (route captures, request
	// ID, and similar) that the render stage may need but that aren't
	// part of the HTTP request itself.
	Locals map[string]any `json:"locals,omitempty"`
}

// RenderOutput is what a render produces, whether executed inline or by a
// worker.
type RenderOutput struct {
	// Status is the HTTP status code to reply with.
	Status int `json:"status"`

	// Reason is a short human-readable status description.
	Reason string `json:"reason"`

	// Headers are extra response headers the render stage wants set.
	Headers map[string]string `json:"headers,omitempty"`

	// Body is the rendered HTML (or synthesized error page).
	Body string `json:"body"`

	// DurationMs is the render's wall-clock duration.
	DurationMs float64 `json:"duration_ms"`

	// WorkerID identifies which worker produced this output. Zero means
	// the render ran inline on the request-handling goroutine.
	WorkerID int `json:"worker_id"`

	// Err, when non-empty, carries the render-stage failure message. A
	// non-empty Err does not by itself mean the task failed to produce a
	// response — Status/Body are still the reply to send.
	Err string `json:"err,omitempty"`
}

// Input is the request-shaped value a worker reconstructs from a RenderTask
// before invoking the render stage.
type Input struct {
	URL     *url.URL
	Method  string
	Headers map[string]string
	Body    []byte
	Data    json.RawMessage
	Locals  map[string]any
}

// Assemble builds a RenderTask from an inbound request, the route it
// matched, and the data already fetched for it. It reads and restores the
// request body so callers downstream of Assemble can still consume r.Body
// normally.
func Assemble(r *http.Request, route string, data json.RawMessage, locals map[string]any) (RenderTask, error) {
	if r == nil || r.URL == nil || r.URL.Path == "" {
		return RenderTask{}, fmt.Errorf("%w: empty request path", ErrMalformedRequest)
	}

	absURL := absoluteURL(r)
	if _, err := url.ParseRequestURI(absURL); err != nil {
		return RenderTask{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		headers[name] = strings.Join(values, ", ")
	}

	task := RenderTask{
		Route:   route,
		URL:     absURL,
		Method:  r.Method,
		Headers: headers,
		Data:    data,
		Locals:  locals,
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		if r.Body == nil {
			return RenderTask{}, fmt.Errorf("%w: nil body on %s request", ErrBodyConsumed, r.Method)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return RenderTask{}, fmt.Errorf("%w: %v", ErrBodyConsumed, err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		task.Body = body
	}

	return task, nil
}

// Reconstruct turns a RenderTask back into a request-shaped Input, the form
// a render stage operates on. It never touches the original request — by the
// time a worker sees a RenderTask, the request that produced it may already
// be gone.
func Reconstruct(t RenderTask) (Input, error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return Input{
		URL:     u,
		Method:  t.Method,
		Headers: t.Headers,
		Body:    t.Body,
		Data:    t.Data,
		Locals:  t.Locals,
	}, nil
}

func absoluteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	host := r.Host
	if host == "" {
		host = "localhost"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}
	return u.String()
}
