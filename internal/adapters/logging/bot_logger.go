package logging

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
)

// LogPersister stores log entries outside the process (the bot_logs table)
type LogPersister interface {
	Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error
}

// Options configures a BotLogger
type Options struct {
	Level    string // debug, info, warn, error
	Format   string // json, text
	Output   string // stdout, stderr, file
	FilePath string
	RunID    string
}

// BotLogger implements common.BotLogger on top of zap.
// Entries at or above the configured level are written to the output and, when a persister is
// attached, stored asynchronously so logging never blocks a trading cycle.
type BotLogger struct {
	logger    *zap.Logger
	level     zapcore.Level
	runID     string
	persister LogPersister

	pending sync.WaitGroup
	closer  func() error
}

// NewBotLogger builds a logger writing to the configured output
func NewBotLogger(opts Options, persister LogPersister) (*BotLogger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	sink, closer, err := openSink(opts.Output, opts.FilePath)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if opts.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, sink, level)
	logger := NewBotLoggerWithCore(core, opts.RunID, persister)
	logger.level = level
	logger.closer = closer
	return logger, nil
}

// NewBotLoggerWithCore wraps an existing zap core, used by tests to observe output
func NewBotLoggerWithCore(core zapcore.Core, runID string, persister LogPersister) *BotLogger {
	logger := zap.New(core)
	if runID != "" {
		logger = logger.With(zap.String("run_id", runID))
	}
	return &BotLogger{
		logger:    logger,
		level:     zapcore.DebugLevel,
		runID:     runID,
		persister: persister,
	}
}

// Log implements common.BotLogger
func (l *BotLogger) Log(level, message string, metadata map[string]interface{}) {
	zapLevel := toZapLevel(level)
	if zapLevel < l.level {
		return
	}

	if ce := l.logger.Check(zapLevel, message); ce != nil {
		ce.Write(fields(metadata)...)
	}

	if l.persister == nil {
		return
	}

	l.pending.Add(1)
	go func() {
		defer l.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := l.persister.Log(ctx, l.runID, strings.ToUpper(level), message, metadata); err != nil {
			// Report on stderr only; routing this through Log would recurse
			fmt.Fprintf(os.Stderr, "%s ERROR failed to persist log entry: %v\n", time.Now().Format(time.RFC3339), err)
		}
	}()
}

// Flush waits for pending persistence writes and syncs the output
func (l *BotLogger) Flush() {
	l.pending.Wait()
	_ = l.logger.Sync()
}

// Close flushes and releases the output file, if any
func (l *BotLogger) Close() error {
	l.Flush()
	if l.closer != nil {
		return l.closer()
	}
	return nil
}

// ParseLevel maps a configured level name onto a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}

func toZapLevel(level string) zapcore.Level {
	switch level {
	case common.LevelDebug:
		return zapcore.DebugLevel
	case common.LevelWarning:
		return zapcore.WarnLevel
	case common.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// fields converts metadata into zap fields in key order so output is stable
func fields(metadata map[string]interface{}) []zap.Field {
	if len(metadata) == 0 {
		return nil
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		result = append(result, zap.Any(k, metadata[k]))
	}
	return result
}

func openSink(output, filePath string) (zapcore.WriteSyncer, func() error, error) {
	switch output {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil, nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil, nil
	case "file":
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return zapcore.Lock(f), f.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown log output: %s", output)
	}
}

var _ common.BotLogger = (*BotLogger)(nil)
