// Package metrics holds the Prometheus collectors exposed at /metrics.
//
// Collectors are registered on the default registry at init via promauto.
// Callers use the Record* helpers rather than touching the vectors directly,
// so label sets stay consistent.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Uploads
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_uploads_total",
			Help: "Total number of stored files by backend and result",
		},
		[]string{"backend", "result"}, // "success", "error"
	)

	UploadBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_upload_bytes_total",
			Help: "Total bytes written to upload storage",
		},
		[]string{"backend"},
	)

	// Auth and contact
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	ContactMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_contact_messages_total",
			Help: "Contact form submissions by result",
		},
		[]string{"result"},
	)

	// Circuit breakers guarding outbound calls (SMTP, GitHub)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portfolio_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordHTTPRequest records one served request. route is the matched chi
// pattern, never the raw path, to keep cardinality bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordUpload(backend string, size int, err error) {
	if err != nil {
		UploadsTotal.WithLabelValues(backend, "error").Inc()
		return
	}
	UploadsTotal.WithLabelValues(backend, "success").Inc()
	UploadBytes.WithLabelValues(backend).Add(float64(size))
}

func RecordLogin(success bool) {
	LoginAttempts.WithLabelValues(result(success)).Inc()
}

func RecordContact(success bool) {
	ContactMessages.WithLabelValues(result(success)).Inc()
}

// RecordBreakerTransition updates breaker gauges. from and to are the
// breaker's state names ("closed", "half-open", "open").
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

func stateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
