package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	// unavailable counts the symbols a request could not get data for.
	unavailable *prometheus.CounterVec
}

func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folio_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"route"},
		),
		unavailable: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_symbols_unavailable_total",
				Help: "Total number of symbols without market data by endpoint",
			},
			[]string{"endpoint"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.unavailable)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
