package dispatcher

import (
	"strings"

	"github.com/volcanion-labs/ssr-dispatcher/internal/config"
	"github.com/volcanion-labs/ssr-dispatcher/internal/registry"
)

// execPath names which side of the dispatcher rendered a request.
type execPath string

const (
	execInline execPath = "inline"
	execWorker execPath = "worker"
)

const apiPrefix = "/api/"

const (
	ioHeavyInlineBelowMs = 50.0
	ioHeavyInlineAboveMs = 200.0
)

// decide applies spec.md's mode/classification rules for one URL path and
// returns the chosen execution path plus a short human-readable reason
// (surfaced only in SSR_DEBUG logging). The decision is a pure function of
// (mode, path, route metadata, current stats) — calling it twice for the
// same inputs always yields the same answer.
func (d *Dispatcher) decide(path string, route *registry.RouteDefinition) (execPath, string) {
	switch d.mode {
	case config.ModeTraditional:
		return execInline, "mode=traditional"
	case config.ModeWorker:
		if path == d.metricsPath {
			return execInline, "metrics endpoint always runs inline"
		}
		return execWorker, "mode=worker"
	default:
		return d.classifyHybrid(path, route)
	}
}

// classifyHybrid implements spec.md §4.6's ordered heuristic: a fixed set of
// substring rules, then (as an escape hatch for routes the string rules
// can't identify) the route's own declared Metadata.Workload, then a
// stats-based fallback. Ties resolve to the first matching rule.
func (d *Dispatcher) classifyHybrid(path string, route *registry.RouteDefinition) (execPath, string) {
	if path == d.metricsPath {
		return execInline, "metrics endpoint always runs inline"
	}
	if isIOHeavy(path) {
		return execInline, "io-heavy pattern"
	}
	if isCPUIntensive(path, d.resultsViewerPath) {
		return execWorker, "cpu-intensive pattern"
	}
	if isSimple(path) {
		return execWorker, "simple pattern"
	}

	if route != nil {
		switch route.Metadata.Workload {
		case registry.WorkloadIOHeavy, registry.WorkloadMixed:
			return execInline, "route metadata: io-heavy/mixed"
		case registry.WorkloadCPUIntensive, registry.WorkloadSimple:
			return execWorker, "route metadata: cpu-intensive/simple"
		}
	}

	avgMs, observed := d.stats.Average(path)
	if !observed {
		return execWorker, "no prior observation, defaulting to worker"
	}
	if avgMs < ioHeavyInlineBelowMs {
		return execInline, "observed average below 50ms"
	}
	if avgMs > ioHeavyInlineAboveMs {
		return execInline, "observed average above 200ms"
	}
	return execWorker, "observed average in the worker-favorable band"
}

func isIOHeavy(path string) bool {
	return strings.HasPrefix(path, apiPrefix) ||
		strings.Contains(path, "api-heavy") ||
		strings.Contains(path, "mixed")
}

func isCPUIntensive(path, resultsViewerPath string) bool {
	if strings.Contains(path, "cpu-intensive") {
		return true
	}
	return resultsViewerPath != "" && path == resultsViewerPath
}

func isSimple(path string) bool {
	return path == "/" || strings.Contains(path, "simple")
}
