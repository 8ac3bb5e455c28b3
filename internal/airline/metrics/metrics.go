package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the airline registry.
type Metrics struct {
	AirlinesCreated  prometheus.Counter
	Registrations    prometheus.Counter
	VotesCast        prometheus.Counter
	Fundings         *prometheus.CounterVec
	RejectedOps      *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
}

// New creates a Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		AirlinesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightsurety_airlines_created_total",
			Help: "Total number of airline records created",
		}),
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightsurety_airlines_registered_total",
			Help: "Total number of airlines that became registered",
		}),
		VotesCast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightsurety_votes_cast_total",
			Help: "Total number of accepted votes",
		}),
		Fundings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flightsurety_fundings_total",
			Help: "Total number of accepted fundings, by whether it was the first",
		}, []string{"first"}),
		RejectedOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flightsurety_registry_rejected_total",
			Help: "Registry operations rejected, by operation and error code",
		}, []string{"operation", "code"}),
		OperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flightsurety_registry_operation_duration_seconds",
			Help:    "Duration of registry operations including lock wait",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementAirlinesCreated() {
	m.AirlinesCreated.Inc()
}

func (m *Metrics) IncrementRegistrations() {
	m.Registrations.Inc()
}

func (m *Metrics) IncrementVotesCast() {
	m.VotesCast.Inc()
}

func (m *Metrics) IncrementFundings(first bool) {
	if first {
		m.Fundings.WithLabelValues("true").Inc()
		return
	}
	m.Fundings.WithLabelValues("false").Inc()
}

func (m *Metrics) IncrementRejected(operation, code string) {
	m.RejectedOps.WithLabelValues(operation, code).Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
