package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Outbox
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
	OutboxRetries           *prometheus.CounterVec

	DatabaseOperations *prometheus.CounterVec

	// Scheduling
	ShiftsCreated     *prometheus.CounterVec
	OverlapRejections prometheus.Counter
	SeriesRegenerated prometheus.Counter

	// Delegation and access
	LinkRequests       *prometheus.CounterVec
	EntitlementDenials prometheus.Counter
}

// NewMetrics registers every collector on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OutboxEventsProcessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_processed_total",
			Help:      "Total number of successfully relayed outbox events",
		}),
		OutboxEventsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_failed_total",
			Help:      "Total number of outbox events that could not be relayed",
		}),
		OutboxProcessingLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "processing_duration_seconds",
			Help:      "Time spent relaying one outbox batch",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		OutboxRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "retry_attempts_total",
			Help:      "Total number of publish retries",
		}, []string{"event_type"}),

		DatabaseOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),

		ShiftsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shifts",
			Name:      "created_total",
			Help:      "Shifts created, by origin",
		}, []string{"origin"}),
		OverlapRejections: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shifts",
			Name:      "overlap_rejections_total",
			Help:      "Shift writes rejected because they overlap an existing shift",
		}),
		SeriesRegenerated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shifts",
			Name:      "series_regenerated_total",
			Help:      "Recurring series regenerated after a time change",
		}),

		LinkRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delegation",
			Name:      "link_requests_total",
			Help:      "Link request transitions, by outcome",
		}, []string{"outcome"}),
		EntitlementDenials: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "entitlement_denials_total",
			Help:      "Requests refused for lack of an active trial or subscription",
		}),
	}
}

// NewNop builds metrics on a private registry.
func NewNop() *Metrics {
	return NewMetrics(prometheus.NewRegistry(), "anesteasy")
}
