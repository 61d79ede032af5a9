package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Every series is tradeup_<subsystem>_<name>
const (
	namespace = "tradeup"
	subsystem = "bot"
)

var (
	// Registry is nil until Setup runs; every Record* function is a no-op before that
	Registry *prometheus.Registry

	globalBotCollector BotMetricsRecorder
)

// BotMetricsRecorder receives trading events from the application layer.
// Services call the package-level Record* functions so that metrics stay optional.
type BotMetricsRecorder interface {
	RecordRecipeFetch(outcome string)
	RecordPriceProbe(success bool)
	RecordBuyOrder(status string)
	RecordCancellation(success bool)
	SetActiveOrders(count int)
	RecordListing(status string)
	RecordInventorySize(count int)
	RecordCycle(durationSeconds float64)
}

// Setup creates a fresh registry with Go runtime and process metrics, installs the bot
// and API collectors as the global recorders, and returns the command collector for
// the mediator middleware.
func Setup() (*CommandMetricsCollector, error) {
	InitRegistry()

	if err := register(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	); err != nil {
		return nil, fmt.Errorf("failed to register runtime metrics: %w", err)
	}

	bot := NewBotMetricsCollector()
	if err := bot.Register(); err != nil {
		return nil, fmt.Errorf("failed to register bot metrics: %w", err)
	}
	SetGlobalBotCollector(bot)

	api := NewAPIMetricsCollector()
	if err := api.Register(); err != nil {
		return nil, fmt.Errorf("failed to register api metrics: %w", err)
	}
	SetGlobalAPICollector(api)

	commands := NewCommandMetricsCollector()
	if err := commands.Register(); err != nil {
		return nil, fmt.Errorf("failed to register command metrics: %w", err)
	}
	return commands, nil
}

// InitRegistry replaces Registry with an empty one
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// IsEnabled reports whether Setup or InitRegistry has run
func IsEnabled() bool {
	return Registry != nil
}

func register(cs ...prometheus.Collector) error {
	if Registry == nil {
		return nil
	}
	for _, c := range cs {
		if err := Registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// SetGlobalBotCollector installs the recorder behind the package-level bot functions; nil disables them
func SetGlobalBotCollector(collector BotMetricsRecorder) {
	globalBotCollector = collector
}

// RecordRecipeFetch counts a recipe cache lookup: hit, fetched or unavailable
func RecordRecipeFetch(outcome string) {
	if globalBotCollector != nil {
		globalBotCollector.RecordRecipeFetch(outcome)
	}
}

func RecordPriceProbe(success bool) {
	if globalBotCollector != nil {
		globalBotCollector.RecordPriceProbe(success)
	}
}

// RecordBuyOrder counts a placement attempt by outcome status (placed, simulated, rejected, ...)
func RecordBuyOrder(status string) {
	if globalBotCollector != nil {
		globalBotCollector.RecordBuyOrder(status)
	}
}

func RecordCancellation(success bool) {
	if globalBotCollector != nil {
		globalBotCollector.RecordCancellation(success)
	}
}

// SetActiveOrders publishes the ledger size
func SetActiveOrders(count int) {
	if globalBotCollector != nil {
		globalBotCollector.SetActiveOrders(count)
	}
}

func RecordListing(status string) {
	if globalBotCollector != nil {
		globalBotCollector.RecordListing(status)
	}
}

func RecordInventorySize(count int) {
	if globalBotCollector != nil {
		globalBotCollector.RecordInventorySize(count)
	}
}

// RecordCycle observes one inventory poll cycle
func RecordCycle(durationSeconds float64) {
	if globalBotCollector != nil {
		globalBotCollector.RecordCycle(durationSeconds)
	}
}
