// Package renderstage invokes a route's Renderer and turns a render failure
// into a safely-escaped HTML error page, the way the teacher's
// error_mapper.go turns a domain error into an HTTP response.
package renderstage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"runtime/debug"
	"time"

	"github.com/volcanion-labs/ssr-dispatcher/internal/registry"
)

// ErrRenderFailed wraps any error or recovered panic from a route's
// Renderer.
var ErrRenderFailed = errors.New("renderstage: render failed")

var errorPageTemplate = template.Must(template.New("render-error").Parse(`<!DOCTYPE html>
<html>
<head><title>500 Internal Server Error</title></head>
<body>
<h1>Internal Server Error</h1>
<pre>{{.Message}}</pre>
</body>
</html>
`))

// Render invokes route's Renderer against data, returning the rendered HTML
// (or, on failure, a synthesized error page), the render's wall-clock
// duration, and an error wrapping ErrRenderFailed when the render failed.
// A panic inside the Renderer is recovered and reported the same way a
// returned error would be — it never propagates to the caller.
func Render(ctx context.Context, route *registry.RouteDefinition, data json.RawMessage, renderCtx registry.RenderContext) (string, time.Duration, error) {
	start := time.Now()
	html, err := safeRender(ctx, route, data, renderCtx)
	duration := time.Since(start)

	if err != nil {
		wrapped := fmt.Errorf("%w: route %q: %v", ErrRenderFailed, route.Name, err)
		return SynthesizeErrorPage(wrapped), duration, wrapped
	}
	return html, duration, nil
}

// SynthesizeErrorPage builds a minimal, valid HTML document reporting err,
// with err's message passed through html/template so any HTML-reserved
// characters it contains are escaped rather than injected verbatim.
func SynthesizeErrorPage(err error) string {
	var buf bytes.Buffer
	message := "internal error"
	if err != nil {
		message = err.Error()
	}
	// errorPageTemplate.Execute only fails on a broken template, which
	// Must already guarantees isn't the case; ignoring the error here
	// cannot silently drop an HTML-escaping failure.
	_ = errorPageTemplate.Execute(&buf, struct{ Message string }{Message: message})
	return buf.String()
}

func safeRender(ctx context.Context, route *registry.RouteDefinition, data json.RawMessage, renderCtx registry.RenderContext) (html string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	if route == nil || route.Renderer == nil {
		return "", errors.New("route has no renderer")
	}
	return route.Renderer(ctx, data, renderCtx)
}
