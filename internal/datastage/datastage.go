// Package datastage invokes a route's data fetcher with timing and uniform
// error wrapping, the way the teacher's engine.worker times and wraps each
// request execution.
package datastage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/volcanion-labs/ssr-dispatcher/internal/registry"
)

// ErrDataFetchFailed wraps any error returned by a route's DataFetcher.
var ErrDataFetchFailed = errors.New("datastage: data fetch failed")

// Fetch runs route's DataFetcher, if any, against url and locals, returning
// the fetched data, the wall-clock duration the fetch took, and an error
// wrapping ErrDataFetchFailed on failure. Routes with no DataFetcher return
// immediately with nil data and zero duration.
func Fetch(ctx context.Context, route *registry.RouteDefinition, url string, locals map[string]any) (json.RawMessage, time.Duration, error) {
	if route == nil || route.DataFetcher == nil {
		return nil, 0, nil
	}

	start := time.Now()
	data, err := route.DataFetcher(ctx, url, locals)
	duration := time.Since(start)
	if err != nil {
		return nil, duration, fmt.Errorf("%w: route %q: %v", ErrDataFetchFailed, route.Name, err)
	}
	return data, duration, nil
}
