package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recalculation passes partitioned by market and outcome
	recalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_recalculations_total",
			Help: "Total number of segment recalculation passes",
		},
		[]string{"market", "status"},
	)

	// Duration of one segment recalculation pass
	recalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_recalculation_duration_seconds",
			Help:    "Segment recalculation pass latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"market"},
	)

	// Topics repositioned by recalculation passes
	topicsRankedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_topics_ranked_total",
			Help: "Total number of topics scored and positioned",
		},
		[]string{"market"},
	)
)
