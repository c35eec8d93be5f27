package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Outcomes            *prometheus.CounterVec
	RegistryLatency     prometheus.Histogram
	RegistryCallsDenied prometheus.Counter
	BreakerOpen         prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "presale_licence_verifications_total",
			Help: "Licence verifications by outcome",
		}, []string{"outcome"}),
		RegistryLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "presale_licence_registry_request_duration_seconds",
			Help:    "Latency of outbound registry lookups",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RegistryCallsDenied: f.NewCounter(prometheus.CounterOpts{
			Name: "presale_licence_registry_short_circuited_total",
			Help: "Registry lookups skipped because the circuit breaker was open",
		}),
		BreakerOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "presale_licence_registry_breaker_open",
			Help: "1 while the registry circuit breaker is open",
		}),
	}
}

// ObserveOutcome records a verification outcome; an empty outcome is a success.
func (m *Metrics) ObserveOutcome(outcome string) {
	if outcome == "" {
		outcome = "verified"
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRegistryLatency(seconds float64) {
	m.RegistryLatency.Observe(seconds)
}

func (m *Metrics) IncrementShortCircuited() {
	m.RegistryCallsDenied.Inc()
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}
