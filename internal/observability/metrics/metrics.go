// Package metrics exposes the Prometheus collectors for access decisions,
// identity resolution and HTTP traffic.
package metrics

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crimetracker/crimetracker-api/internal/domain/access"
	obserrors "github.com/crimetracker/crimetracker-api/internal/observability/errors"
)

const namespace = "crimetracker"

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Metrics holds the registered collectors. A nil *Metrics is a no-op so
// components can be built without a registry in tests.
type Metrics struct {
	gatherer prometheus.Gatherer

	accessDecisions   *prometheus.CounterVec
	identityLookups   *prometheus.CounterVec
	notificationsSent *prometheus.CounterVec
	httpInFlight      prometheus.Gauge
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		accessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_decisions_total",
			Help:      "Settled access decisions by guard, decision and denial reason.",
		}, []string{"guard", "decision", "reason"}),
		identityLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_resolutions_total",
			Help:      "Identity resolutions by outcome.",
		}, []string{"outcome", "error_class"}),
		notificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification sends by kind and result.",
		}, []string{"kind", "result"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.accessDecisions,
		m.identityLookups,
		m.notificationsSent,
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// AccessDecision counts a settled decision. Pending is not counted.
func (m *Metrics) AccessDecision(guard string, d access.Decision, err error) {
	if m == nil || !d.Settled() {
		return
	}
	m.accessDecisions.WithLabelValues(guard, string(d), access.ReasonLabel(err)).Inc()
}

// IdentityResolution counts one resolver outcome ("resolved", "signed_out",
// "no_role", "lookup_failure").
func (m *Metrics) IdentityResolution(outcome string, err error) {
	if m == nil {
		return
	}
	m.identityLookups.WithLabelValues(outcome, obserrors.Classify(err)).Inc()
}

// NotificationSent counts a notification send attempt.
func (m *Metrics) NotificationSent(kind, result string) {
	if m == nil {
		return
	}
	m.notificationsSent.WithLabelValues(kind, result).Inc()
}

// Instrument records in-flight, count and latency for requests to route.
// route is the registered pattern so label cardinality stays bounded.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		m.httpDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequests.WithLabelValues(r.Method, route, status).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Hijack passes websocket upgrades through to the underlying writer.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}
