package geocode

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/git21git/travelplanner/internal/domain"
)

const (
	outcomeOK          = "ok"
	outcomeNotFound    = "not_found"
	outcomeUnavailable = "unavailable"
)

var latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5}

type metrics struct {
	requests *prometheus.CounterVec
	latency  prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "travelplanner",
			Subsystem: "geocoder",
			Name:      "requests_total",
			Help:      "Geocoding requests by outcome",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "travelplanner",
			Subsystem: "geocoder",
			Name:      "request_duration_seconds",
			Help:      "Latency of geocoding requests",
			Buckets:   latencyBuckets,
		}),
	}
	if reg == nil {
		return m
	}
	if err := reg.Register(m.requests); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				m.requests = existing
			}
		}
	}
	if err := reg.Register(m.latency); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				m.latency = existing
			}
		}
	}
	return m
}

func (m *metrics) observe(outcome string, d time.Duration) {
	m.requests.WithLabelValues(outcome).Inc()
	m.latency.Observe(d.Seconds())
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrAddressNotFound):
		return outcomeNotFound
	default:
		return outcomeUnavailable
	}
}
