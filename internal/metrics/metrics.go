package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainErrors "github.com/polkiloo/adbroker/internal/domain/errors"
)

// Notification delivery outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeDropped   = "dropped"
)

// Metrics owns a private registry with every collector the service exports.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	operations    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	queueDepth    prometheus.Gauge
	breakerState  *prometheus.GaugeVec
}

// New creates collectors and registers them along with runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbroker_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adbroker_http_request_duration_seconds",
				Help:    "Latency of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbroker_operations_total",
				Help: "Marketplace operations by result",
			},
			[]string{"operation", "result"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbroker_notifications_total",
				Help: "Notification deliveries by outcome",
			},
			[]string{"outcome"},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "adbroker_notification_queue_depth",
				Help: "Events waiting for delivery",
			},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "adbroker_circuit_breaker_state",
				Help: "Circuit breaker state per sink (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.operations,
		m.notifications,
		m.queueDepth,
		m.breakerState,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveOperation counts an operation under its error kind, or "ok".
func (m *Metrics) ObserveOperation(operation string, err error) {
	m.operations.WithLabelValues(operation, Result(err)).Inc()
}

// ObserveNotification counts a delivery outcome.
func (m *Metrics) ObserveNotification(outcome string) {
	m.notifications.WithLabelValues(outcome).Inc()
}

// SetQueueDepth reports pending events.
func (m *Metrics) SetQueueDepth(n int) {
	m.queueDepth.Set(float64(n))
}

// SetBreakerState reports a breaker transition. Unknown states are reported as open.
func (m *Metrics) SetBreakerState(name, state string) {
	var v float64
	switch state {
	case "closed":
		v = 0
	case "half-open":
		v = 1
	default:
		v = 2
	}
	m.breakerState.WithLabelValues(name).Set(v)
}

// Result converts err into a metric label.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	kind := domainErrors.Kind(err)
	if kind == nil {
		return "internal"
	}
	return strings.ReplaceAll(kind.Error(), " ", "_")
}
