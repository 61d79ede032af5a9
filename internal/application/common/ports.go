package common

import (
	"context"
	"time"
)

// BotLogEntry is a persisted log line
type BotLogEntry struct {
	ID        int
	RunID     string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]interface{}
}

// BotLogFilter narrows a log listing; zero values mean no filter
type BotLogFilter struct {
	RunID  string
	Level  string
	Since  *time.Time
	Limit  int
	Offset int
}

// BotLogRepository stores and lists bot log entries
type BotLogRepository interface {
	Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error
	GetLogs(ctx context.Context, filter BotLogFilter) ([]BotLogEntry, error)
}
