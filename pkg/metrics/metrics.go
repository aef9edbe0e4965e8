package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all handy terminal metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics (presentation adapter)
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Backend gateway metrics
	GatewayRequestsTotal   *prometheus.CounterVec
	GatewayRequestDuration *prometheus.HistogramVec

	// Workflow metrics
	IntentsTotal       *prometheus.CounterVec
	SubmissionsTotal   *prometheus.CounterVec
	SubmissionDuration *prometheus.HistogramVec
	StateSubscribers   prometheus.Gauge
	PickingLoadsTotal  *prometheus.CounterVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "wms",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "gateway_requests_total",
			Help:      "Total number of requests sent to the warehouse backend",
		},
		[]string{"service", "operation", "status"},
	)

	m.GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "gateway_request_duration_seconds",
			Help:      "Warehouse backend request duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"service", "operation"},
	)

	m.IntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "workflow_intents_total",
			Help:      "Total number of workflow intents by outcome",
		},
		[]string{"service", "workflow", "intent", "outcome"},
	)

	m.SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "incoming_submissions_total",
			Help:      "Total number of incoming submissions by flow and outcome",
		},
		[]string{"service", "flow", "outcome"},
	)

	m.SubmissionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "incoming_submission_duration_seconds",
			Help:      "Incoming submission duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"service", "flow"},
	)

	m.StateSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "state_subscribers",
			Help:        "Number of active state stream subscribers",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.PickingLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "picking_task_loads_total",
			Help:      "Total number of picking task list loads by tab and outcome",
		},
		[]string{"service", "tab", "outcome"},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service", "name"},
	)

	m.CircuitBreakerTrips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "circuit_breaker_trips_total",
			Help:      "Total number of circuit breaker trips",
		},
		[]string{"service", "name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.GatewayRequestsTotal,
		m.GatewayRequestDuration,
		m.IntentsTotal,
		m.SubmissionsTotal,
		m.SubmissionDuration,
		m.StateSubscribers,
		m.PickingLoadsTotal,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
	)

	return m
}

// Handler returns an HTTP handler for metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments in-flight requests
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements in-flight requests
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

// RecordGatewayCall records a backend call. status is the failure code or "success".
func (m *Metrics) RecordGatewayCall(operation, status string, duration time.Duration) {
	m.GatewayRequestsTotal.WithLabelValues(m.serviceName, operation, status).Inc()
	m.GatewayRequestDuration.WithLabelValues(m.serviceName, operation).Observe(duration.Seconds())
}

// RecordIntent records a workflow intent outcome
func (m *Metrics) RecordIntent(workflow, intent, outcome string) {
	m.IntentsTotal.WithLabelValues(m.serviceName, workflow, intent, outcome).Inc()
}

// RecordSubmission records an incoming submission
func (m *Metrics) RecordSubmission(flow, outcome string, duration time.Duration) {
	m.SubmissionsTotal.WithLabelValues(m.serviceName, flow, outcome).Inc()
	m.SubmissionDuration.WithLabelValues(m.serviceName, flow).Observe(duration.Seconds())
}

// SetStateSubscribers sets the number of state stream subscribers
func (m *Metrics) SetStateSubscribers(count int) {
	m.StateSubscribers.Set(float64(count))
}

// RecordPickingLoad records a picking task list load
func (m *Metrics) RecordPickingLoad(tab, outcome string) {
	m.PickingLoadsTotal.WithLabelValues(m.serviceName, tab, outcome).Inc()
}

// SetCircuitBreakerState sets the circuit breaker state
func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(m.serviceName, name).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(name string) {
	m.CircuitBreakerTrips.WithLabelValues(m.serviceName, name).Inc()
}
