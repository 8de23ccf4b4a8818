package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the portal's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	httpErrors        *prometheus.CounterVec
	gateDecisions     *prometheus.CounterVec
	ticketTransitions *prometheus.CounterVec
	ticketResponses   prometheus.Counter
	upstreamFetches   *prometheus.CounterVec
}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path"}),
		httpErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_errors_total",
			Help: "Errors rendered by the error middleware",
		}, []string{"method", "path", "code"}),
		gateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_gate_decisions_total",
			Help: "Authorization gate decisions by outcome",
		}, []string{"outcome"}),
		ticketTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_ticket_transitions_total",
			Help: "Applied ticket status transitions",
		}, []string{"from", "to"}),
		ticketResponses: factory.NewCounter(prometheus.CounterOpts{
			Name: "portal_ticket_responses_total",
			Help: "Responses appended to tickets",
		}),
		upstreamFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_upstream_fetches_total",
			Help: "Member page fetches by result",
		}, []string{"result"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(method, path, code).Inc()
}

// RecordGateDecision counts one authorization gate outcome.
func (m *Metrics) RecordGateDecision(outcome string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(outcome).Inc()
}

// RecordTransition counts an applied status change and an optional response.
func (m *Metrics) RecordTransition(from, to string, responded bool) {
	if m == nil {
		return
	}
	m.ticketTransitions.WithLabelValues(from, to).Inc()
	if responded {
		m.ticketResponses.Inc()
	}
}

// RecordFetch counts a member page fetch result: ok, superseded or error.
func (m *Metrics) RecordFetch(result string) {
	if m == nil {
		return
	}
	m.upstreamFetches.WithLabelValues(result).Inc()
}
