package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// 1. Generations Total (Counter)
	// Counts LLM generation calls, labeled by backend and status.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphoracle_generations_total",
			Help: "Total number of LLM generation requests",
		},
		[]string{"backend", "status"},
	)

	// 2. Generation Duration (Histogram)
	// Generation of a 300 token sample can take tens of seconds.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphoracle_generation_duration_seconds",
			Help:    "Duration of LLM generation requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"backend"},
	)

	// 3. Encode Duration (Histogram)
	EncodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphoracle_encode_duration_seconds",
			Help:    "Duration of embedding model requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"backend"},
	)

	// 4. Oracle Queries (Counter)
	// outcome is "matched" when a category name was found in the answer,
	// "fallback" when the class was drawn at random.
	OracleQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphoracle_oracle_queries_total",
			Help: "Total number of oracle label queries",
		},
		[]string{"outcome"},
	)

	// 5. Oracle Fallbacks (Counter)
	// Every increment is one uniformly random label injected into the run.
	OracleFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "graphoracle_oracle_fallbacks_total",
			Help: "Number of oracle answers that matched no category",
		},
	)
)

// ObserveGeneration records one generation call started at start.
func ObserveGeneration(backend string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	GenerationsTotal.WithLabelValues(backend, status).Inc()
	GenerationDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}

// ObserveEncode records one encoder call started at start.
func ObserveEncode(backend string, start time.Time) {
	EncodeDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}

// ObserveOracle records the outcome of one oracle query.
func ObserveOracle(fallback bool) {
	if fallback {
		OracleQueriesTotal.WithLabelValues("fallback").Inc()
		OracleFallbacksTotal.Inc()
		return
	}
	OracleQueriesTotal.WithLabelValues("matched").Inc()
}
