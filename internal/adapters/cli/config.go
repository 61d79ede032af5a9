package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/tradeup-bot/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect TradeUp bot configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (TB_* prefix, e.g. TB_BOT_CHECK_INTERVAL=60s)
2. Config file (config.yaml)
3. Default values

Examples:
  tradeup-bot config show
  tradeup-bot --config ./prod.yaml config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the effective configuration with secrets masked.

Malformed recipe links are reported so they can be fixed before a run.

Example:
  tradeup-bot config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			displayConfig(cfg)
			return nil
		},
	}

	return cmd
}

func displayConfig(cfg *config.Config) {
	fmt.Println("TradeUp Bot Configuration")
	fmt.Println("=========================")

	fmt.Println("\nBot:")
	fmt.Printf("  Live Trading:      %v\n", cfg.Bot.EnableOrders)
	fmt.Printf("  Check Interval:    %s\n", cfg.Bot.CheckInterval)
	fmt.Printf("  Cache Expiry:      %s\n", cfg.Bot.CacheExpiry)
	fmt.Printf("  Probe Concurrency: %d\n", cfg.Bot.ProbeConcurrency)
	fmt.Printf("  Recipes:           %d\n", len(cfg.Bot.RecipeLinks))
	for _, err := range config.ValidateRecipeLinks(cfg.Bot.RecipeLinks) {
		fmt.Printf("    ! %v\n", err)
	}

	fmt.Println("\nSteam:")
	fmt.Printf("  Base URL:          %s\n", cfg.Steam.BaseURL)
	fmt.Printf("  SteamID:           %s\n", valueOrUnset(cfg.Steam.SteamID))
	fmt.Printf("  Cookies:           %s\n", mask(cfg.Steam.CookiesHeader))
	fmt.Printf("  API Key:           %s\n", mask(cfg.Steam.APIKey))
	fmt.Printf("  Currency/Country:  %d / %s\n", cfg.Steam.Currency, cfg.Steam.Country)

	fmt.Println("\nTradeUpSpy:")
	fmt.Printf("  API:               %s\n", cfg.TradeUpSpy.BaseURL)
	fmt.Printf("  Origin:            %s\n", cfg.TradeUpSpy.WebOrigin)

	fmt.Println("\nAPI Client:")
	fmt.Printf("  Timeout:           %s\n", cfg.API.Timeout)
	fmt.Printf("  Verify SSL:        %v\n", cfg.API.ShouldVerifySSL())
	fmt.Printf("  Rate Limit:        %d req/s (burst %d)\n", cfg.API.RateLimit.Requests, cfg.API.RateLimit.Burst)
	fmt.Printf("  Retries:           %d (backoff %s)\n", cfg.API.Retry.MaxAttempts, cfg.API.Retry.BackoffBase)
	fmt.Printf("  Circuit Breaker:   %d failures / %s\n", cfg.API.CircuitBreaker.MaxFailures, cfg.API.CircuitBreaker.Timeout)

	fmt.Println("\nDatabase:")
	fmt.Printf("  Type:              %s\n", cfg.Database.Type)
	if cfg.Database.IsSQLite() {
		fmt.Printf("  Path:              %s\n", cfg.Database.Path)
	} else if cfg.Database.URL != "" {
		fmt.Printf("  URL:               %s\n", mask(cfg.Database.URL))
	} else {
		fmt.Printf("  Host:              %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	}
	fmt.Printf("  Log Queries:       %v\n", cfg.Database.LogQueries)

	fmt.Println("\nLogging:")
	fmt.Printf("  Level/Format:      %s / %s\n", cfg.Logging.Level, cfg.Logging.Format)
	fmt.Printf("  Output:            %s\n", cfg.Logging.Output)
	fmt.Printf("  Persist:           %v\n", cfg.Logging.Persist)

	fmt.Println("\nMetrics:")
	fmt.Printf("  Enabled:           %v\n", cfg.Metrics.Enabled)
	if cfg.Metrics.Enabled {
		fmt.Printf("  Endpoint:          http://%s%s\n", cfg.Metrics.Address(), cfg.Metrics.Path)
	}

	fmt.Println("\nProcess:")
	fmt.Printf("  PID File:          %s\n", cfg.Daemon.PIDFile)
	fmt.Printf("  Shutdown Timeout:  %s\n", cfg.Daemon.ShutdownTimeout)
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// mask hides a secret, keeping only enough to recognise it
func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", 8)
}
