// Package telemetry exposes the system's Prometheus metrics, following
// the teacher's pattern of a single registered-metrics struct
// constructed once at startup and passed down to callers rather than
// relying on package-level globals.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter/gauge/histogram the batch orchestrator,
// sponsor resolver, and gate engine emit.
type Metrics struct {
	TrialsIngested        *prometheus.CounterVec
	TrialsErrored         *prometheus.CounterVec
	SponsorDecisions      *prometheus.CounterVec
	GateFired             *prometheus.CounterVec
	StopRuleHit           *prometheus.CounterVec
	BatchDuration         prometheus.Histogram
	RegistryRequestsTotal *prometheus.CounterVec
	PFailObserved         prometheus.Histogram
}

// New registers every metric against reg and returns the bundle. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// global registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TrialsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ncfd_trials_ingested_total",
			Help: "Trials processed by the ingestion orchestrator, by outcome.",
		}, []string{"outcome"}), // new|changed|unchanged

		TrialsErrored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ncfd_trials_errored_total",
			Help: "Per-trial ingestion failures, by error kind.",
		}, []string{"kind"}),

		SponsorDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ncfd_sponsor_decisions_total",
			Help: "Sponsor resolver decisions, by decision and method.",
		}, []string{"decision", "method"}),

		GateFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ncfd_gate_fired_total",
			Help: "Gate evaluations that fired, by gate id.",
		}, []string{"gate_id"}),

		StopRuleHit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ncfd_stop_rule_hit_total",
			Help: "Stop rule hits, by rule id.",
		}, []string{"rule_id"}),

		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ncfd_batch_duration_seconds",
			Help:    "Wall-clock duration of an ingestion batch.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),

		RegistryRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ncfd_registry_requests_total",
			Help: "Registry HTTP requests, by outcome.",
		}, []string{"outcome"}), // ok|rate_limited|transient|permanent

		PFailObserved: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ncfd_pfail_observed",
			Help:    "Distribution of computed p_fail across scored trials.",
			Buckets: prometheus.LinearBuckets(0, 0.05, 21),
		}),
	}

	reg.MustRegister(
		m.TrialsIngested, m.TrialsErrored, m.SponsorDecisions, m.GateFired,
		m.StopRuleHit, m.BatchDuration, m.RegistryRequestsTotal, m.PFailObserved,
	)
	return m
}
