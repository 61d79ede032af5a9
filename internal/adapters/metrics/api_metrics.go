package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetricsCollector tracks outbound HTTP traffic to Steam and TradeUpSpy
type APIMetricsCollector struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	retries       *prometheus.CounterVec
	rateLimitWait *prometheus.HistogramVec
	circuitState  *prometheus.GaugeVec
}

// APIMetricsRecorder is the recording surface used by the HTTP client
type APIMetricsRecorder interface {
	RecordAPIRequest(service, endpoint string, statusCode int, durationSeconds float64)
	RecordAPIRetry(service, endpoint, reason string)
	RecordRateLimitWait(service string, durationSeconds float64)
	SetCircuitState(service string, state int)
}

var globalAPICollector APIMetricsRecorder

// NewAPIMetricsCollector creates a new API metrics collector
func NewAPIMetricsCollector() *APIMetricsCollector {
	return &APIMetricsCollector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Outbound API requests by service, endpoint and status code (0 for network errors)",
			},
			[]string{"service", "endpoint", "status_code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Outbound API request latency",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"service", "endpoint"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "retries_total",
				Help:      "Retried API requests by reason",
			},
			[]string{"service", "endpoint", "reason"},
		),
		rateLimitWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "rate_limit_wait_seconds",
				Help:      "Time spent waiting for the client-side rate limiter",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"service"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "circuit_state",
				Help:      "Circuit breaker state per service (0 closed, 1 open, 2 half-open)",
			},
			[]string{"service"},
		),
	}
}

// Register adds the API series to Registry
func (c *APIMetricsCollector) Register() error {
	return register(c.requests, c.duration, c.retries, c.rateLimitWait, c.circuitState)
}

func (c *APIMetricsCollector) RecordAPIRequest(service, endpoint string, statusCode int, durationSeconds float64) {
	c.requests.WithLabelValues(service, endpoint, strconv.Itoa(statusCode)).Inc()
	c.duration.WithLabelValues(service, endpoint).Observe(durationSeconds)
}

func (c *APIMetricsCollector) RecordAPIRetry(service, endpoint, reason string) {
	c.retries.WithLabelValues(service, endpoint, reason).Inc()
}

func (c *APIMetricsCollector) RecordRateLimitWait(service string, durationSeconds float64) {
	c.rateLimitWait.WithLabelValues(service).Observe(durationSeconds)
}

func (c *APIMetricsCollector) SetCircuitState(service string, state int) {
	c.circuitState.WithLabelValues(service).Set(float64(state))
}

// SetGlobalAPICollector sets the global API metrics collector
func SetGlobalAPICollector(collector APIMetricsRecorder) {
	globalAPICollector = collector
}

// RecordAPIRequest records a completed outbound request
func RecordAPIRequest(service, endpoint string, statusCode int, durationSeconds float64) {
	if globalAPICollector != nil {
		globalAPICollector.RecordAPIRequest(service, endpoint, statusCode, durationSeconds)
	}
}

// RecordAPIRetry records a retry decision
func RecordAPIRetry(service, endpoint, reason string) {
	if globalAPICollector != nil {
		globalAPICollector.RecordAPIRetry(service, endpoint, reason)
	}
}

// RecordRateLimitWait records time spent blocked on the rate limiter
func RecordRateLimitWait(service string, durationSeconds float64) {
	if globalAPICollector != nil {
		globalAPICollector.RecordRateLimitWait(service, durationSeconds)
	}
}

// SetCircuitState publishes a circuit breaker transition
func SetCircuitState(service string, state int) {
	if globalAPICollector != nil {
		globalAPICollector.SetCircuitState(service, state)
	}
}
