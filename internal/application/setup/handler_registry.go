package setup

import (
	"github.com/andrescamacho/tradeup-bot/internal/adapters/metrics"
	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/commands"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/queries"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	cache       *services.RecipeCache
	engine      *services.BuyDecisionEngine
	ledger      *services.OrderLedger
	scanner     *services.InventoryScanner
	inventory   market.InventorySource
	marketplace market.Marketplace
	clock       shared.Clock
	apiBase     string

	// Optional: without a journal orphan recovery and order listing are not registered
	journal market.OrderJournal
	logRepo common.BotLogRepository

	commandMetrics *metrics.CommandMetricsCollector
}

// Dependencies groups the collaborators a HandlerRegistry is built from
type Dependencies struct {
	Cache       *services.RecipeCache
	Engine      *services.BuyDecisionEngine
	Ledger      *services.OrderLedger
	Scanner     *services.InventoryScanner
	Inventory   market.InventorySource
	Marketplace market.Marketplace
	Journal     market.OrderJournal
	LogRepo     common.BotLogRepository
	Clock       shared.Clock
	APIBase     string

	CommandMetrics *metrics.CommandMetricsCollector
}

// NewHandlerRegistry creates a new handler registry with required dependencies
func NewHandlerRegistry(deps Dependencies) *HandlerRegistry {
	// Default to real clock if not provided
	clock := deps.Clock
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		cache:          deps.Cache,
		engine:         deps.Engine,
		ledger:         deps.Ledger,
		scanner:        deps.Scanner,
		inventory:      deps.Inventory,
		marketplace:    deps.Marketplace,
		clock:          clock,
		apiBase:        deps.APIBase,
		journal:        deps.Journal,
		logRepo:        deps.LogRepo,
		commandMetrics: deps.CommandMetrics,
	}
}

// RegisterTradingHandlers registers the commands that drive a trading run
//
// This method registers:
//   - PlaceBuyOrdersCommand → PlaceBuyOrdersHandler
//   - ScanInventoryCommand → ScanInventoryHandler
//   - CancelBuyOrdersCommand → CancelBuyOrdersHandler
//   - RunTradeBotCommand → RunTradeBotHandler (dispatches the three above through m)
func (r *HandlerRegistry) RegisterTradingHandlers(m common.Mediator) error {
	if err := common.RegisterHandler[*commands.PlaceBuyOrdersCommand](
		m, commands.NewPlaceBuyOrdersHandler(r.cache, r.engine, r.ledger),
	); err != nil {
		return err
	}

	if err := common.RegisterHandler[*commands.ScanInventoryCommand](
		m, commands.NewScanInventoryHandler(r.cache, r.inventory, r.scanner),
	); err != nil {
		return err
	}

	if err := common.RegisterHandler[*commands.CancelBuyOrdersCommand](
		m, commands.NewCancelBuyOrdersHandler(r.ledger),
	); err != nil {
		return err
	}

	return common.RegisterHandler[*commands.RunTradeBotCommand](
		m, commands.NewRunTradeBotHandler(m, r.clock, r.apiBase),
	)
}

// RegisterQueryHandlers registers the read-only handlers used by the CLI
func (r *HandlerRegistry) RegisterQueryHandlers(m common.Mediator) error {
	if err := common.RegisterHandler[*queries.EvaluateRecipeQuery](
		m, queries.NewEvaluateRecipeHandler(r.cache, r.engine, r.apiBase),
	); err != nil {
		return err
	}

	if r.logRepo != nil {
		if err := common.RegisterHandler[*queries.ListLogsQuery](
			m, queries.NewListLogsHandler(r.logRepo),
		); err != nil {
			return err
		}
	}

	return nil
}

// RegisterJournalHandlers registers the handlers that read or repair the order journal
func (r *HandlerRegistry) RegisterJournalHandlers(m common.Mediator) error {
	if err := common.RegisterHandler[*commands.RecoverOrphanedOrdersCommand](
		m, commands.NewRecoverOrphanedOrdersHandler(r.journal, r.marketplace, r.clock),
	); err != nil {
		return err
	}

	return common.RegisterHandler[*queries.ListOrdersQuery](
		m, queries.NewListOrdersHandler(r.journal),
	)
}

// CreateConfiguredMediator creates a new mediator with every available handler registered
//
// The command metrics middleware is installed when a collector was supplied.
func (r *HandlerRegistry) CreateConfiguredMediator() (common.Mediator, error) {
	m := common.NewMediator()

	if r.commandMetrics != nil {
		m.Use(metrics.PrometheusMiddleware(r.commandMetrics))
	}

	if err := r.RegisterTradingHandlers(m); err != nil {
		return nil, err
	}

	if err := r.RegisterQueryHandlers(m); err != nil {
		return nil, err
	}

	if r.journal != nil {
		if err := r.RegisterJournalHandlers(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}
