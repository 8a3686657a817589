package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a Sink that records Prometheus metrics for finalized requests.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec

	registry *prometheus.Registry
}

var _ Sink = (*Metrics)(nil)

// NewMetrics creates the request metrics on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketd_http_requests_total",
				Help: "Total number of finalized HTTP requests by method and status code",
			},
			[]string{"method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketd_http_request_duration_seconds",
				Help:    "HTTP request processing duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketd_http_errors_total",
				Help: "Total number of failed HTTP requests by internal error kind and client error type",
			},
			[]string{"kind", "client_type"},
		),
		registry: registry,
	}

	registry.MustRegister(m.requestsTotal, m.requestDuration, m.errorsTotal)

	return m
}

// Write records the request.
func (m *Metrics) Write(_ context.Context, rec RequestLog) error {
	method := methodLabel(rec.Method)
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(rec.Status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(rec.Duration.Seconds())
	if rec.Err != nil {
		m.errorsTotal.WithLabelValues(rec.Err.Kind().String(), string(rec.ClientErr)).Inc()
	}

	return nil
}

// methodLabel keeps the method label bounded, since clients can send any
// token as the request method.
func methodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodConnect,
		http.MethodOptions, http.MethodTrace:
		return method
	default:
		return "other"
	}
}

// Handler returns the HTTP handler that exposes the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
