package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: bot.check_interval is read from TB_BOT_CHECK_INTERVAL
const EnvPrefix = "TB"

// Config is everything a tradeup-bot process needs, one section per concern
type Config struct {
	Bot        BotConfig        `mapstructure:"bot"`
	Steam      SteamConfig      `mapstructure:"steam"`
	TradeUpSpy TradeUpSpyConfig `mapstructure:"tradeupspy"`
	API        APIConfig        `mapstructure:"api"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Daemon     DaemonConfig     `mapstructure:"daemon"`
}

// LoadConfig resolves the configuration. Environment variables beat the config file,
// which beats the built-in defaults. An empty configPath searches the working
// directory, ./configs and /etc/tradeup-bot for config.{yaml,json,toml}.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func newViper(configPath string) (*viper.Viper, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		for _, dir := range []string{".", "./configs", "/etc/tradeup-bot"} {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env vars for keys viper already knows about
	for _, key := range settingKeys(reflect.TypeOf(Config{}), "") {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Hosting platforms hand out DATABASE_URL without our prefix
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	return v, nil
}

// settingKeys lists the dotted mapstructure path of every leaf setting in t
func settingKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("mapstructure")
		if name == "" || name == "-" {
			continue
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		if field.Type.Kind() == reflect.Struct {
			keys = append(keys, settingKeys(field.Type, name)...)
			continue
		}
		keys = append(keys, name)
	}
	return keys
}
