package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
)

// CommandMetricsCollector times every command and query dispatched by the mediator,
// including the long-lived RunTradeBotCommand and each per-cycle command it sends
type CommandMetricsCollector struct {
	latency  *prometheus.HistogramVec
	handled  *prometheus.CounterVec
	inFlight *prometheus.GaugeVec
}

func NewCommandMetricsCollector() *CommandMetricsCollector {
	labels := []string{"request", "status"}
	return &CommandMetricsCollector{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "mediator",
			Name:      "request_duration_seconds",
			Help:      "Handler latency per request type and outcome",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2.5, 9),
		}, labels),
		handled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mediator",
			Name:      "requests_total",
			Help:      "Handled requests per request type and outcome",
		}, labels),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mediator",
			Name:      "requests_in_flight",
			Help:      "Requests currently inside their handler",
		}, []string{"request"}),
	}
}

// Register adds the mediator series to Registry
func (c *CommandMetricsCollector) Register() error {
	return register(c.latency, c.handled, c.inFlight)
}

// Observe records one finished request
func (c *CommandMetricsCollector) Observe(request string, elapsed time.Duration, err error) {
	status := statusLabel(err == nil)
	c.latency.WithLabelValues(request, status).Observe(elapsed.Seconds())
	c.handled.WithLabelValues(request, status).Inc()
}

// PrometheusMiddleware instruments the mediator. Requests are labelled by bare type
// name, e.g. "PlaceBuyOrdersCommand".
func PrometheusMiddleware(collector *CommandMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		name := common.RequestName(request)
		gauge := collector.inFlight.WithLabelValues(name)
		gauge.Inc()
		defer gauge.Dec()

		start := time.Now()
		resp, err := next(ctx, request)
		collector.Observe(name, time.Since(start), err)
		return resp, err
	}
}
