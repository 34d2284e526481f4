package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts audit events so login failure spikes and unauthenticated
// proxy traffic show up on dashboards and alerts.
type Metrics struct {
	authEvents *prometheus.CounterVec
}

// NewMetrics registers the BFF auth collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		authEvents: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "windback_bff_auth_events_total",
			Help: "Security audit events by type and outcome.",
		}, []string{"event", "outcome"}),
	}
}

func (m *Metrics) recordEvent(event AuditEvent, outcome string) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(string(event), outcome).Inc()
}
