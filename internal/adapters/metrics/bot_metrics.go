package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BotMetricsCollector handles all trading bot metrics
type BotMetricsCollector struct {
	recipeFetches *prometheus.CounterVec
	priceProbes   *prometheus.CounterVec
	buyOrders     *prometheus.CounterVec
	cancellations *prometheus.CounterVec
	activeOrders  prometheus.Gauge
	listings      *prometheus.CounterVec
	inventorySize prometheus.Gauge
	cycleDuration prometheus.Histogram
}

// NewBotMetricsCollector creates a new bot metrics collector
func NewBotMetricsCollector() *BotMetricsCollector {
	return &BotMetricsCollector{
		recipeFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "recipe_fetches_total",
				Help:      "Recipe lookups by outcome (hit, fetched, unavailable)",
			},
			[]string{"outcome"},
		),
		priceProbes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "price_probes_total",
				Help:      "Order book probes by status",
			},
			[]string{"status"},
		),
		buyOrders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "buy_orders_total",
				Help:      "Buy order placement attempts by status",
			},
			[]string{"status"},
		),
		cancellations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "buy_order_cancellations_total",
				Help:      "Buy order cancellation attempts by status",
			},
			[]string{"status"},
		),
		activeOrders: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "active_buy_orders",
				Help:      "Buy orders currently tracked by the ledger",
			},
		),
		listings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "listings_total",
				Help:      "Sell listing attempts by status",
			},
			[]string{"status"},
		),
		inventorySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "inventory_items",
				Help:      "Marketable items seen in the last inventory fetch",
			},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cycle_duration_seconds",
				Help:      "Poll cycle duration distribution",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),
	}
}

// Register adds the bot series to Registry
func (c *BotMetricsCollector) Register() error {
	return register(
		c.recipeFetches, c.priceProbes, c.buyOrders, c.cancellations,
		c.activeOrders, c.listings, c.inventorySize, c.cycleDuration,
	)
}

func (c *BotMetricsCollector) RecordRecipeFetch(outcome string) {
	c.recipeFetches.WithLabelValues(outcome).Inc()
}

func (c *BotMetricsCollector) RecordPriceProbe(success bool) {
	c.priceProbes.WithLabelValues(statusLabel(success)).Inc()
}

func (c *BotMetricsCollector) RecordBuyOrder(status string) {
	c.buyOrders.WithLabelValues(status).Inc()
}

func (c *BotMetricsCollector) RecordCancellation(success bool) {
	c.cancellations.WithLabelValues(statusLabel(success)).Inc()
}

func (c *BotMetricsCollector) SetActiveOrders(count int) {
	c.activeOrders.Set(float64(count))
}

func (c *BotMetricsCollector) RecordListing(status string) {
	c.listings.WithLabelValues(status).Inc()
}

func (c *BotMetricsCollector) RecordInventorySize(count int) {
	c.inventorySize.Set(float64(count))
}

func (c *BotMetricsCollector) RecordCycle(durationSeconds float64) {
	c.cycleDuration.Observe(durationSeconds)
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
