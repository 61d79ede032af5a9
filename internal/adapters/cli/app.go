package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/api"
	"github.com/andrescamacho/tradeup-bot/internal/adapters/logging"
	"github.com/andrescamacho/tradeup-bot/internal/adapters/metrics"
	"github.com/andrescamacho/tradeup-bot/internal/adapters/persistence"
	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/application/setup"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
	"github.com/andrescamacho/tradeup-bot/internal/infrastructure/config"
	"github.com/andrescamacho/tradeup-bot/internal/infrastructure/database"
	"github.com/andrescamacho/tradeup-bot/pkg/utils"
)

// app holds every wired component for one CLI invocation
type app struct {
	cfg      *config.Config
	runID    string
	db       *gorm.DB
	logger   *logging.BotLogger
	mediator common.Mediator
	ledger   *services.OrderLedger

	metricsServer *metrics.Server
}

// appOptions selects which optional parts of the stack a command needs
type appOptions struct {
	// Start the Prometheus endpoint when enabled in config
	serveMetrics bool
	// Persist log entries when enabled in config
	persistLogs bool
}

// newApp loads configuration and wires adapters, services and the mediator.
// The caller must call close.
func newApp(opts appOptions) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	clock := shared.NewRealClock()
	a := &app{
		cfg:   cfg,
		runID: utils.GenerateRunID(clock.Now()),
	}

	// 1. Database (order journal and bot logs)
	db, err := database.Open(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	a.db = db

	journal := persistence.NewGormOrderJournalRepository(db)
	logRepo := persistence.NewGormBotLogRepository(db, clock)

	// 2. Logger
	var persister logging.LogPersister
	if opts.persistLogs && cfg.Logging.Persist {
		persister = logRepo
	}
	logger, err := logging.NewBotLogger(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		Output:   cfg.Logging.Output,
		FilePath: cfg.Logging.FilePath,
		RunID:    a.runID,
	}, persister)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger

	// 3. Metrics
	var commandMetrics *metrics.CommandMetricsCollector
	if cfg.Metrics.Enabled {
		commandMetrics, err = metrics.Setup()
		if err != nil {
			a.close()
			return nil, err
		}
		if opts.serveMetrics {
			a.metricsServer = metrics.NewServer(cfg.Metrics.Address(), cfg.Metrics.Path)
		}
	}

	// 4. External adapters
	steam, err := api.NewSteamClient(api.SteamClientOptions{
		BaseURL:       cfg.Steam.BaseURL,
		SteamID:       cfg.Steam.SteamID,
		CookiesHeader: cfg.Steam.CookiesHeader,
		Currency:      cfg.Steam.Currency,
		Country:       cfg.Steam.Country,
		Language:      cfg.Steam.Language,
		AppID:         cfg.Steam.AppID,
		ContextID:     cfg.Steam.ContextID,
	}, httpOptions(cfg, "steam", clock))
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create steam client: %w", err)
	}

	tradeUpSpy := api.NewTradeUpSpyClient(api.TradeUpSpyOptions{
		BaseURL:   cfg.TradeUpSpy.BaseURL,
		WebOrigin: cfg.TradeUpSpy.WebOrigin,
		UserAgent: cfg.TradeUpSpy.UserAgent,
	}, httpOptions(cfg, "tradeupspy", clock))

	// 5. Services and handlers
	a.ledger = services.NewOrderLedger(steam, journal, clock, a.runID, cfg.Bot.EnableOrders)

	registry := setup.NewHandlerRegistry(setup.Dependencies{
		Cache:          services.NewRecipeCache(tradeUpSpy, cfg.Bot.CacheExpiry, clock),
		Engine:         services.NewBuyDecisionEngine(tradeUpSpy, steam, cfg.Bot.ProbeConcurrency),
		Ledger:         a.ledger,
		Scanner:        services.NewInventoryScanner(steam, cfg.Bot.EnableOrders),
		Inventory:      steam,
		Marketplace:    steam,
		Journal:        journal,
		LogRepo:        logRepo,
		Clock:          clock,
		APIBase:        cfg.TradeUpSpy.BaseURL,
		CommandMetrics: commandMetrics,
	})

	a.mediator, err = registry.CreateConfiguredMediator()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}

	return a, nil
}

// httpOptions maps the shared API settings onto one adapter's HTTP client
func httpOptions(cfg *config.Config, service string, clock shared.Clock) api.HTTPClientOptions {
	return api.HTTPClientOptions{
		Service:            service,
		Timeout:            cfg.API.Timeout,
		VerifySSL:          cfg.API.ShouldVerifySSL(),
		RequestsPerSecond:  float64(cfg.API.RateLimit.Requests),
		Burst:              cfg.API.RateLimit.Burst,
		MaxRetries:         cfg.API.Retry.MaxAttempts,
		BackoffBase:        cfg.API.Retry.BackoffBase,
		BreakerMaxFailures: cfg.API.CircuitBreaker.MaxFailures,
		BreakerCoolDown:    cfg.API.CircuitBreaker.Timeout,
		Clock:              clock,
	}
}

// withLogger returns ctx carrying the app logger
func (a *app) withLogger(ctx context.Context) context.Context {
	return common.WithLogger(ctx, a.logger)
}

// close releases the metrics server, logger and database in reverse wiring order
func (a *app) close() {
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to stop metrics server: %v\n", err)
		}
		cancel()
	}
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", err)
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
}
