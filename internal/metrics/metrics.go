// Package metrics holds the Prometheus instrumentation for a
// reachability run.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus metric recorded by the Driver. Pass
// to components that need to record metrics.
type Metrics struct {
	DecisionsTotal     *prometheus.CounterVec
	DecisionDuration   prometheus.Histogram
	StatesExplored     prometheus.Histogram
	SliceRounds        prometheus.Histogram
	RolesPrunedRatio   prometheus.Histogram
	RulesBeforePruning prometheus.Gauge
	RulesAfterPruning  prometheus.Gauge
}

// New creates and registers every metric with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		DecisionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arbac_reach",
				Name:      "decisions_total",
				Help:      "Total number of reachability decisions computed",
			},
			[]string{"verdict"}, // verdict=reachable/not_reachable
		),
		DecisionDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "arbac_reach",
				Name:      "decision_duration_seconds",
				Help:      "Wall-clock time of a full Decide call, pruning and search included",
				Buckets:   prometheus.DefBuckets,
			},
		),
		StatesExplored: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "arbac_reach",
				Name:      "states_explored",
				Help:      "Number of distinct assignment states visited by the search",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		SliceRounds: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "arbac_reach",
				Name:      "slice_rounds",
				Help:      "Number of forward/backward slicing rounds to reach a fixed point",
				Buckets:   prometheus.LinearBuckets(1, 1, 10),
			},
		),
		RolesPrunedRatio: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "arbac_reach",
				Name:      "roles_pruned_ratio",
				Help:      "Fraction of roles removed by slicing (1 - sliced/original)",
				Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		RulesBeforePruning: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "arbac_reach",
				Name:      "rules_before_pruning",
				Help:      "Rule count of the most recently decided problem before slicing",
			},
		),
		RulesAfterPruning: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "arbac_reach",
				Name:      "rules_after_pruning",
				Help:      "Rule count of the most recently decided problem after slicing",
			},
		),
	}
}

// Handler returns the HTTP handler exposition endpoint for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
