package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query engine Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riahunter",
			Name:      "queries_total",
			Help:      "Total queries by execution strategy",
		},
		[]string{"strategy"},
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "riahunter",
			Name:      "retrieval_duration_seconds",
			Help:      "Per-path retrieval duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"path"}, // "semantic" / "lexical" / "direct-sort"
	)

	DecompositionFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riahunter",
			Name:      "decomposition_fallbacks_total",
			Help:      "Queries decomposed by the rule-based parser instead of the language model",
		},
	)

	DegradedResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riahunter",
			Name:      "degraded_responses_total",
			Help:      "Responses served in a degraded mode",
		},
		[]string{"reason"},
	)

	RelaxationRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riahunter",
			Name:      "relaxation_retries_total",
			Help:      "Empty-result retries after dropping the most restrictive filter",
		},
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers Prometheus query metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(DecompositionFallbacksTotal)
	prometheus.MustRegister(DegradedResponsesTotal)
	prometheus.MustRegister(RelaxationRetriesTotal)
	queryMetricsRegistered = true
}
