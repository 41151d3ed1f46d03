// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends to the simulation code.
// Consumers register hooks at startup to receive events about simulation
// runs and pedigree queries.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [PrometheusHooks] is the bundled backend; the serve command registers it
// and exposes the collected metrics on /metrics.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	    observability.SetSimulationHooks(hooks)
//	    observability.SetQueryHooks(hooks)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Simulation().OnRunStart(ctx, runID, generations, size)
//	// ... simulate ...
//	observability.Simulation().OnRunComplete(ctx, runID, individuals, pedigrees, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Simulation Hooks
// =============================================================================

// SimulationHooks receives events from the simulation pipeline.
type SimulationHooks interface {
	// Run events
	OnRunStart(ctx context.Context, runID string, generations, generationSize int)
	OnRunComplete(ctx context.Context, runID string, individuals, pedigrees int, duration time.Duration, err error)

	// Seeding events
	OnSeedComplete(ctx context.Context, runID string, pedigrees, loci int, duration time.Duration, err error)
}

// =============================================================================
// Query Hooks
// =============================================================================

// Query kinds reported to QueryHooks.
const (
	QueryDistance          = "distance"
	QueryPath              = "path"
	QueryHistogram         = "histogram"
	QueryHaplotypeDistance = "haplotype_distance"
)

// QueryHooks receives events from pedigree queries issued by hosts.
type QueryHooks interface {
	// OnQuery records one completed query of the given kind.
	OnQuery(ctx context.Context, kind string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSimulationHooks is a no-op implementation of SimulationHooks.
type NoopSimulationHooks struct{}

func (NoopSimulationHooks) OnRunStart(context.Context, string, int, int) {}
func (NoopSimulationHooks) OnRunComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopSimulationHooks) OnSeedComplete(context.Context, string, int, int, time.Duration, error) {
}

// NoopQueryHooks is a no-op implementation of QueryHooks.
type NoopQueryHooks struct{}

func (NoopQueryHooks) OnQuery(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	simulationHooks SimulationHooks = NoopSimulationHooks{}
	queryHooks      QueryHooks      = NoopQueryHooks{}
	hooksMu         sync.RWMutex
)

// SetSimulationHooks registers custom simulation hooks.
// This should be called once at application startup before any simulation runs.
func SetSimulationHooks(h SimulationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		simulationHooks = h
	}
}

// SetQueryHooks registers custom query hooks.
// This should be called once at application startup before serving queries.
func SetQueryHooks(h QueryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		queryHooks = h
	}
}

// Simulation returns the registered simulation hooks.
func Simulation() SimulationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return simulationHooks
}

// Query returns the registered query hooks.
func Query() QueryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return queryHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	simulationHooks = NoopSimulationHooks{}
	queryHooks = NoopQueryHooks{}
}
