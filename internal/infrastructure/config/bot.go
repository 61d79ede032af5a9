package config

import "time"

// BotConfig holds the trading loop settings
type BotConfig struct {
	// TradeUpSpy share links to trade on
	RecipeLinks []string `mapstructure:"recipe_links" validate:"dive,required"`

	// Pause between inventory scans
	CheckInterval time.Duration `mapstructure:"check_interval" validate:"required"`

	// How long a fetched recipe stays fresh
	CacheExpiry time.Duration `mapstructure:"cache_expiry" validate:"required"`

	// Live trading switch. When false every marketplace action is only logged.
	EnableOrders bool `mapstructure:"enable_orders"`

	// Parallel order book probes per demand group
	ProbeConcurrency int `mapstructure:"probe_concurrency" validate:"min=1,max=16"`
}

// SteamConfig holds Steam Community Market settings
type SteamConfig struct {
	// 64-bit SteamID of the trading account (inventory owner)
	SteamID string `mapstructure:"steam_id" validate:"omitempty,numeric"`

	Username string `mapstructure:"username"`

	// Steam Web API key
	APIKey string `mapstructure:"api_key"`

	// Raw Cookie header copied from a logged-in browser session
	CookiesHeader string `mapstructure:"cookies_header"`

	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Steam wallet currency code (3 = EUR)
	Currency int `mapstructure:"currency" validate:"min=1"`

	Country  string `mapstructure:"country" validate:"required,len=2"`
	Language string `mapstructure:"language" validate:"required"`

	// CS2 app id and inventory context
	AppID     int `mapstructure:"app_id" validate:"min=1"`
	ContextID int `mapstructure:"context_id" validate:"min=1"`
}

// TradeUpSpyConfig holds TradeUpSpy API settings
type TradeUpSpyConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Origin/Referer the API expects
	WebOrigin string `mapstructure:"web_origin" validate:"required,url"`

	UserAgent string `mapstructure:"user_agent"`
}
