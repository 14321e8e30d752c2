package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presales_rows_processed_total",
			Help: "Total number of requirement rows processed, by outcome",
		},
		[]string{"outcome"}, // analyzed | skipped | error
	)

	RowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "presales_row_duration_seconds",
			Help:    "Duration of single-row processing in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presales_evidence_cache_lookups_total",
			Help: "Evidence cache lookups, by result",
		},
		[]string{"result"}, // hit | miss
	)

	SearchCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presales_search_calls_total",
			Help: "Web search tool invocations, by status",
		},
		[]string{"status"}, // ok | error | disabled
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presales_llm_calls_total",
			Help: "LLM completion calls, by status",
		},
		[]string{"status"}, // ok | retried | failed
	)

	BatchesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presales_batches_completed_total",
			Help: "Total number of row batches completed",
		},
	)
)
