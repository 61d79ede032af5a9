package config

// LoggingConfig selects the zap encoder and sink
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`

	// stdout, stderr or file; "file" needs FilePath
	Output   string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`
	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`

	// Copy every entry into the bot_logs table so `tradeup-bot logs` can query past runs
	Persist bool `mapstructure:"persist"`
}
