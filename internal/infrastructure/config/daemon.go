package config

import "time"

// DaemonConfig covers the lifetime of a `tradeup-bot run` process
type DaemonConfig struct {
	// Guards against two bots trading the same account
	PIDFile string `mapstructure:"pid_file"`

	// Budget for cancelling this run's outstanding buy orders after a stop signal.
	// The same budget bounds the wait for a replaced instance to exit.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,min=1s"`
}
