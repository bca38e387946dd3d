package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval and rule engine Prometheus metrics.
var (
	RetrievalSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_searches_total",
			Help:      "Searches served, by the backend that produced the result",
		},
		[]string{"backend"},
	)

	RetrievalFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_fallback_total",
			Help:      "Searches that fell back to the term-frequency backend",
		},
		[]string{"reason"}, // "no_query_vector" / "no_document_vectors"
	)

	RuleWarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_warnings_total",
			Help:      "Warnings produced by the rule engine",
		},
		[]string{"category", "kind"},
	)

	CorpusDocuments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_documents",
			Help:      "Documents loaded into the corpus index",
		},
		[]string{"state"}, // "total" / "vectorized"
	)
)

var coreMetricsRegistered bool

// RegisterCoreMetrics registers retrieval, rule and corpus metrics. Must be called once from main.
func RegisterCoreMetrics() {
	if coreMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalSearchesTotal)
	prometheus.MustRegister(RetrievalFallbackTotal)
	prometheus.MustRegister(RuleWarningsTotal)
	prometheus.MustRegister(CorpusDocuments)
	coreMetricsRegistered = true
}
