package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for event publishing.
type Metrics struct {
	Emitted         *prometheus.CounterVec
	Sampled         prometheus.Counter
	Dropped         prometheus.Counter
	PersistFailures prometheus.Counter
}

// NewMetrics creates a Metrics instance registered with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Emitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flightsurety_events_emitted_total",
			Help: "Total number of ledger events accepted for publishing, by category",
		}, []string{"category"}),
		Sampled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightsurety_events_sampled_total",
			Help: "Total number of operations events dropped by sampling",
		}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightsurety_events_dropped_total",
			Help: "Total number of events dropped because the async buffer was full",
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightsurety_events_persist_failures_total",
			Help: "Total number of events the backing store rejected",
		}),
	}
}
