package config

import "time"

// DatabaseConfig points at the store holding the order journal and persisted logs.
// A single SQLite file is enough for one bot; Postgres is there for operators who
// already run one.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// SQLite file, created with its directory on first use
	Path string `mapstructure:"path" validate:"required_if=Type sqlite"`

	// Postgres DSN. When empty the discrete fields below are used.
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// Echo SQL statements to stderr
	LogQueries bool `mapstructure:"log_queries"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig sizes the Postgres connection pool. SQLite always uses one connection.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1,ltefield=MaxOpen"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// IsSQLite reports whether the journal lives in a local SQLite file
func (d DatabaseConfig) IsSQLite() bool {
	return d.Type == "sqlite"
}
