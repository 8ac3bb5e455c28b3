package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the insurance ledger.
type Metrics struct {
	Built            prometheus.Counter
	Purchased        prometheus.Counter
	Credited         *prometheus.CounterVec
	Payouts          prometheus.Counter
	RejectedOps      *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		Built: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightsurety_insurance_built_total",
			Help: "Total number of insurance records built",
		}),
		Purchased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightsurety_insurance_purchased_total",
			Help: "Total number of insurance records purchased",
		}),
		Credited: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flightsurety_insurance_credited_total",
			Help: "Records settled by crediting, by outcome state",
		}, []string{"state"}),
		Payouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightsurety_insurance_payouts_total",
			Help: "Total number of payouts handed to the settler",
		}),
		RejectedOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flightsurety_insurance_rejected_total",
			Help: "Insurance operations rejected, by operation and error code",
		}, []string{"operation", "code"}),
		OperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flightsurety_insurance_operation_duration_seconds",
			Help:    "Duration of insurance operations including lock wait",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementBuilt() {
	m.Built.Inc()
}

func (m *Metrics) IncrementPurchased() {
	m.Purchased.Inc()
}

func (m *Metrics) AddCredited(state string, n int) {
	m.Credited.WithLabelValues(state).Add(float64(n))
}

func (m *Metrics) IncrementPayouts() {
	m.Payouts.Inc()
}

func (m *Metrics) IncrementRejected(operation, code string) {
	m.RejectedOps.WithLabelValues(operation, code).Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
