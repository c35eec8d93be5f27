package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ViewsServed     *prometheus.CounterVec
	RedactionErrors prometheus.Counter
	ListingsWritten *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ViewsServed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "presale_listing_views_served_total",
			Help: "Listing views returned to clients by visibility",
		}, []string{"visibility"}),
		RedactionErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "presale_listing_redaction_errors_total",
			Help: "Listings that could not be redacted because their data is invalid",
		}),
		ListingsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "presale_listings_written_total",
			Help: "Listing writes by operation",
		}, []string{"op"}),
	}
}

// ObserveView counts one served view.
func (m *Metrics) ObserveView(redacted bool) {
	label := "full"
	if redacted {
		label = "redacted"
	}
	m.ViewsServed.WithLabelValues(label).Inc()
}

func (m *Metrics) IncrementRedactionErrors() {
	m.RedactionErrors.Inc()
}

func (m *Metrics) ObserveWrite(op string) {
	m.ListingsWritten.WithLabelValues(op).Inc()
}
