package config

import (
	"time"

	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
)

const (
	defaultSQLitePath = "tradeup-bot.db"

	// Chrome on Windows; TradeUpSpy rejects obvious non-browser clients
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
)

// SetDefaults fills every zero-valued setting. Explicit values, including those
// coming from the environment, are left alone.
func SetDefaults(cfg *Config) {
	botDefaults(&cfg.Bot)
	steamDefaults(&cfg.Steam)
	tradeUpSpyDefaults(&cfg.TradeUpSpy)
	apiDefaults(&cfg.API)
	databaseDefaults(&cfg.Database)

	orDefault(&cfg.Logging.Level, "info")
	orDefault(&cfg.Logging.Format, "text")
	orDefault(&cfg.Logging.Output, "stdout")

	orDefault(&cfg.Metrics.Host, "localhost")
	orDefault(&cfg.Metrics.Port, 9090)
	orDefault(&cfg.Metrics.Path, "/metrics")

	orDefault(&cfg.Daemon.PIDFile, "/tmp/tradeup-bot.pid")
	orDefault(&cfg.Daemon.ShutdownTimeout, 30*time.Second)
}

func orDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

func botDefaults(b *BotConfig) {
	orDefault(&b.CheckInterval, 300*time.Second)
	orDefault(&b.CacheExpiry, time.Hour)
	orDefault(&b.ProbeConcurrency, 1)
}

func steamDefaults(s *SteamConfig) {
	orDefault(&s.BaseURL, "https://steamcommunity.com")
	orDefault(&s.Currency, 3) // EUR
	orDefault(&s.Country, "DE")
	orDefault(&s.Language, "english")
	orDefault(&s.AppID, 730)
	orDefault(&s.ContextID, 2)
}

func tradeUpSpyDefaults(t *TradeUpSpyConfig) {
	orDefault(&t.BaseURL, recipe.DefaultAPIBase)
	orDefault(&t.WebOrigin, "https://www.tradeupspy.com")
	orDefault(&t.UserAgent, defaultUserAgent)
}

func apiDefaults(a *APIConfig) {
	orDefault(&a.Timeout, 30*time.Second)
	orDefault(&a.RateLimit.Requests, 1)
	orDefault(&a.RateLimit.Burst, 3)
	orDefault(&a.Retry.MaxAttempts, 3)
	orDefault(&a.Retry.BackoffBase, 2*time.Second)
	orDefault(&a.CircuitBreaker.MaxFailures, 5)
	orDefault(&a.CircuitBreaker.Timeout, time.Minute)
}

func databaseDefaults(d *DatabaseConfig) {
	orDefault(&d.Type, "sqlite")
	orDefault(&d.Pool.MaxOpen, 5)
	orDefault(&d.Pool.MaxIdle, 2)
	orDefault(&d.Pool.MaxLifetime, 5*time.Minute)

	if d.IsSQLite() {
		orDefault(&d.Path, defaultSQLitePath)
		return
	}

	orDefault(&d.Host, "localhost")
	orDefault(&d.Port, 5432)
	orDefault(&d.User, "tradeup")
	orDefault(&d.Name, "tradeup")
	orDefault(&d.SSLMode, "disable")
}
