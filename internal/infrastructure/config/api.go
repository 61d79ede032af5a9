package config

import "time"

// APIConfig tunes the resilient HTTP client used for both Steam and TradeUpSpy.
// Steam throttles aggressively, so the defaults stay close to one request per second.
type APIConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	// nil means verify
	VerifySSL *bool `mapstructure:"verify_ssl"`

	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	Retry          RetryConfig          `mapstructure:"retry"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// RateLimitConfig is a token bucket shared by every outgoing request
type RateLimitConfig struct {
	Requests int `mapstructure:"requests" validate:"min=1"`
	Burst    int `mapstructure:"burst" validate:"min=1"`
}

// RetryConfig applies to 429, 5xx and transport failures. Backoff doubles from BackoffBase.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"min=0,max=10"`
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}

// CircuitBreakerConfig stops hammering a marketplace that keeps failing
type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures" validate:"min=1"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ShouldVerifySSL resolves the optional VerifySSL flag
func (c APIConfig) ShouldVerifySSL() bool {
	if c.VerifySSL == nil {
		return true
	}
	return *c.VerifySSL
}
