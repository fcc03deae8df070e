// Package metrics exposes Prometheus counters for the linker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the linker's counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	ModulesLinked   *prometheus.CounterVec
	BodiesExecuted  *prometheus.CounterVec
	LoadsTotal      prometheus.Counter
	CacheHits       prometheus.Counter
	LoadFailures    *prometheus.CounterVec
	ExternalLookups prometheus.Counter
}

// New registers the linker metrics with reg. Pass prometheus.NewRegistry() to
// keep instances isolated.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ModulesLinked: f.NewCounterVec(prometheus.CounterOpts{
			Name: "modlink_modules_linked_total",
			Help: "Total number of modules bound to a module record, by binding model",
		}, []string{"kind"}),
		BodiesExecuted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "modlink_module_bodies_executed_total",
			Help: "Total number of module bodies executed, by binding model",
		}, []string{"kind"}),
		LoadsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "modlink_loads_total",
			Help: "Total number of top-level load requests",
		}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "modlink_cache_hits_total",
			Help: "Total number of load requests answered from the module cache",
		}),
		LoadFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "modlink_load_failures_total",
			Help: "Total number of failed load requests, by error class",
		}, []string{"reason"}),
		ExternalLookups: f.NewCounter(prometheus.CounterOpts{
			Name: "modlink_external_lookups_total",
			Help: "Total number of dependencies resolved outside the registry",
		}),
	}
}

// Nil-safe helpers so the linker can run without metrics.

func (m *Metrics) IncLinked(kind string) {
	if m != nil {
		m.ModulesLinked.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncExecuted(kind string) {
	if m != nil {
		m.BodiesExecuted.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncLoads() {
	if m != nil {
		m.LoadsTotal.Inc()
	}
}

func (m *Metrics) IncCacheHits() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) IncFailures(reason string) {
	if m != nil {
		m.LoadFailures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncExternal() {
	if m != nil {
		m.ExternalLookups.Inc()
	}
}
