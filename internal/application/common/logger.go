package common

import "context"

// Severity names as written to the console and stored in bot_logs.level
const (
	LevelDebug   = "DEBUG"
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// BotLogger is the logging port used by handlers and services. Metadata keys become
// structured fields, so prefer stable snake_case keys such as "order_id" or "recipe".
type BotLogger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Discard drops every entry. It stands in when no logger travels with the context.
var Discard BotLogger = discardLogger{}

type discardLogger struct{}

func (discardLogger) Log(string, string, map[string]interface{}) {}

type loggerKey struct{}

// WithLogger returns a copy of ctx carrying logger; a nil logger leaves ctx unchanged
func WithLogger(ctx context.Context, logger BotLogger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// LoggerFromContext returns the logger set by WithLogger, or Discard
func LoggerFromContext(ctx context.Context) BotLogger {
	if ctx == nil {
		return Discard
	}
	if logger, ok := ctx.Value(loggerKey{}).(BotLogger); ok {
		return logger
	}
	return Discard
}
