package config

import (
	"net"
	"strconv"
)

// MetricsConfig controls the Prometheus scrape endpoint served by `tradeup-bot run`
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Loopback unless set; the endpoint exposes trading volume
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`
	Path string `mapstructure:"path" validate:"omitempty,startswith=/"`
}

// Address is the listen address in host:port form
func (m MetricsConfig) Address() string {
	return net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
}
