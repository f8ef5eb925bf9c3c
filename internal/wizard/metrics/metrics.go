package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the wizard module.
type Metrics struct {
	SessionsStarted *prometheus.CounterVec
	Navigation      *prometheus.CounterVec
	Abandoned       *prometheus.CounterVec
}

// New registers the wizard metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dladmin_wizard_sessions_started_total",
			Help: "Wizard sessions started by application type",
		}, []string{"type"}),
		Navigation: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dladmin_wizard_navigation_total",
			Help: "Wizard navigation attempts by action and result",
		}, []string{"action", "result"}), // result: "moved", "blocked", "noop"
		Abandoned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dladmin_wizard_sessions_abandoned_total",
			Help: "Wizard sessions abandoned by application type",
		}, []string{"type"}),
	}
}

func (m *Metrics) IncStarted(appType string) {
	if m != nil {
		m.SessionsStarted.WithLabelValues(appType).Inc()
	}
}

func (m *Metrics) IncNavigation(action, result string) {
	if m != nil {
		m.Navigation.WithLabelValues(action, result).Inc()
	}
}

func (m *Metrics) IncAbandoned(appType string) {
	if m != nil {
		m.Abandoned.WithLabelValues(appType).Inc()
	}
}
