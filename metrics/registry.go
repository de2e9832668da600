package metrics

import (
	"strings"
	"sync"
)

// Registry holds every metric PLCS exposes. Unlike a general-purpose metrics
// registry serving dynamically-named, concurrently-created metrics (peer
// counters, per-contract gauges, ...), PLCS's metric surface is entirely
// fixed: standard.go declares every Counter/Gauge/Histogram as a package
// variable, so registration always completes during package init, before any
// synchronizer goroutine exists to race with it. Counter/Gauge/Histogram
// below stay simple get-or-create calls for that one-time registration; the
// mutex exists to protect Snapshot/SnapshotByGroup against a concurrent
// registration from, say, a test that builds a scratch Registry of its own.
type Registry struct {
	mu         sync.Mutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
}

// DefaultRegistry is the process-wide registry populated by standard.go.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
}

// Counter returns the Counter registered under name, creating it if this is
// its first registration (standard.go's package-level vars are the only
// expected callers).
func (r *Registry) Counter(name string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := NewCounter(name)
	r.counters[name] = c
	return c
}

// Gauge returns the Gauge registered under name, creating it if this is its
// first registration.
func (r *Registry) Gauge(name string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := NewGauge(name)
	r.gauges[name] = g
	return g
}

// Histogram returns the Histogram registered under name, creating it if
// this is its first registration.
func (r *Registry) Histogram(name string) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	h := NewHistogram(name)
	r.histograms[name] = h
	return h
}

// Snapshot returns a point-in-time copy of every metric value in the
// registry, keyed by metric name.
func (r *Registry) Snapshot() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := make(map[string]interface{}, len(r.counters)+len(r.gauges)+len(r.histograms))
	for name, c := range r.counters {
		snap[name] = c.Value()
	}
	for name, g := range r.gauges {
		snap[name] = g.Value()
	}
	for name, h := range r.histograms {
		snap[name] = map[string]interface{}{
			"count": h.Count(),
			"sum":   h.Sum(),
			"min":   h.Min(),
			"max":   h.Max(),
			"mean":  h.Mean(),
		}
	}
	return snap
}

// SnapshotByGroup is Snapshot, regrouped by the dotted prefix every PLCS
// metric name carries (standard.go's "proof.", "accounts.", "blocks.",
// "suffix.", "sync." families) instead of one flat map. This is the shape an
// operator-facing status line for PLCS actually wants: per synchronizer
// subsystem, not per raw metric name.
func (r *Registry) SnapshotByGroup() map[string]map[string]interface{} {
	flat := r.Snapshot()
	grouped := make(map[string]map[string]interface{})
	for name, v := range flat {
		group := name
		if i := strings.IndexByte(name, '.'); i >= 0 {
			group = name[:i]
		}
		if grouped[group] == nil {
			grouped[group] = make(map[string]interface{})
		}
		grouped[group][name] = v
	}
	return grouped
}
