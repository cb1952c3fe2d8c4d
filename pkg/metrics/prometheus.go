package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealsense_events_recorded_total",
			Help: "Events recorded by the sourcer, by outcome",
		},
		[]string{"outcome"},
	)

	SuggestionsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealsense_suggestions_generated_total",
			Help: "Suggestion generation attempts, by outcome",
		},
		[]string{"outcome"},
	)

	DealsPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealsense_deals_posted_total",
			Help: "Deal publish attempts, by outcome",
		},
		[]string{"outcome"},
	)

	CycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealsense_agent_cycle_duration_seconds",
			Help:    "Poll cycle duration per agent",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"agent"},
	)

	AILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dealsense_ai_request_duration_seconds",
			Help:    "Latency of generative model calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)
)
