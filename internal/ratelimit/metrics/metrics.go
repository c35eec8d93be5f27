package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected    *prometheus.CounterVec
	StoreErrors *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "presale_ratelimit_rejected_total",
			Help: "Requests rejected by a rate limit, by scope",
		}, []string{"scope"}),
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "presale_ratelimit_store_errors_total",
			Help: "Rate limit checks that failed open because the counter store errored",
		}, []string{"scope"}),
	}
}

func (m *Metrics) IncrementRejected(scope string) {
	m.Rejected.WithLabelValues(scope).Inc()
}

func (m *Metrics) IncrementStoreErrors(scope string) {
	m.StoreErrors.WithLabelValues(scope).Inc()
}
