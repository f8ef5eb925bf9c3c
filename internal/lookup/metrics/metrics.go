package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for reference data lookups.
type Metrics struct {
	CacheRequests *prometheus.CounterVec
	Refreshes     *prometheus.CounterVec
}

// New registers the lookup metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dladmin_lookup_cache_requests_total",
			Help: "Lookup cache reads by key and result",
		}, []string{"key", "result"}), // result: "hit", "miss", "error"
		Refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dladmin_lookup_refreshes_total",
			Help: "Backend fetches of reference data by key and outcome",
		}, []string{"key", "outcome"}),
	}
}

func (m *Metrics) IncCache(key, result string) {
	if m != nil {
		m.CacheRequests.WithLabelValues(key, result).Inc()
	}
}

func (m *Metrics) IncRefresh(key, outcome string) {
	if m != nil {
		m.Refreshes.WithLabelValues(key, outcome).Inc()
	}
}
