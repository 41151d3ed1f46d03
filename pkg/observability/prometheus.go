package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements SimulationHooks and QueryHooks with Prometheus
// collectors.
type PrometheusHooks struct {
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	individuals   prometheus.Counter
	pedigrees     prometheus.Counter
	seedDuration  prometheus.Histogram
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// It panics if registration fails, like prometheus.MustRegister.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pedsim",
			Name:      "simulation_runs_total",
			Help:      "Simulation runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pedsim",
			Name:      "simulation_run_duration_seconds",
			Help:      "Wall time of complete simulation runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		individuals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pedsim",
			Name:      "simulated_individuals_total",
			Help:      "Individuals created by successful runs.",
		}),
		pedigrees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pedsim",
			Name:      "simulated_pedigrees_total",
			Help:      "Pedigrees discovered by successful runs.",
		}),
		seedDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pedsim",
			Name:      "haplotype_seed_duration_seconds",
			Help:      "Wall time of haplotype seeding across all pedigrees of a run.",
			Buckets:   prometheus.DefBuckets,
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pedsim",
			Name:      "queries_total",
			Help:      "Pedigree queries by kind and outcome.",
		}, []string{"kind", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pedsim",
			Name:      "query_duration_seconds",
			Help:      "Pedigree query latency by kind.",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		}, []string{"kind"}),
	}
	reg.MustRegister(h.runs, h.runDuration, h.individuals, h.pedigrees, h.seedDuration, h.queries, h.queryDuration)
	return h
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnRunStart(context.Context, string, int, int) {}

func (h *PrometheusHooks) OnRunComplete(_ context.Context, _ string, individuals, pedigrees int, d time.Duration, err error) {
	h.runs.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return
	}
	h.runDuration.Observe(d.Seconds())
	h.individuals.Add(float64(individuals))
	h.pedigrees.Add(float64(pedigrees))
}

func (h *PrometheusHooks) OnSeedComplete(_ context.Context, _ string, _, _ int, d time.Duration, err error) {
	if err == nil {
		h.seedDuration.Observe(d.Seconds())
	}
}

func (h *PrometheusHooks) OnQuery(_ context.Context, kind string, d time.Duration, err error) {
	h.queries.WithLabelValues(kind, outcome(err)).Inc()
	h.queryDuration.WithLabelValues(kind).Observe(d.Seconds())
}
