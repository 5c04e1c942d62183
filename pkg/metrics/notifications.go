package metrics

import "github.com/prometheus/client_golang/prometheus"

// Dispatch outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// NotificationMetrics counts notification rows by type and outcome.
type NotificationMetrics struct {
	dispatched *prometheus.CounterVec
}

// NewNotificationMetrics registers the notification counters on reg.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "notifications",
		Name:      "dispatched_total",
		Help:      "Notifications by type and outcome.",
	}, []string{"type", "outcome"})
	reg.MustRegister(dispatched)
	return &NotificationMetrics{dispatched: dispatched}
}

// Add records n notifications of type typ with the given outcome.
func (m *NotificationMetrics) Add(typ, outcome string, n int) {
	if m == nil || m.dispatched == nil || n <= 0 {
		return
	}
	m.dispatched.WithLabelValues(normalizeLabel(typ), outcome).Add(float64(n))
}
