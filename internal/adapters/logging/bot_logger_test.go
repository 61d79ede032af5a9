package logging_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/logging"
	"github.com/andrescamacho/tradeup-bot/internal/application/common"
)

type recordingPersister struct {
	mu       sync.Mutex
	messages []string
	runIDs   []string
}

func (p *recordingPersister) Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, level+":"+message)
	p.runIDs = append(p.runIDs, runID)
	return nil
}

func TestBotLogger_WritesLevelsAndMetadata(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewBotLoggerWithCore(core, "run-1", nil)

	// Act
	logger.Log(common.LevelWarning, "Ledger is shutting down", map[string]interface{}{"item": "x"})
	logger.Log(common.LevelError, "Failed to cancel buy order", nil)

	// Assert
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "x", entries[0].ContextMap()["item"])
	assert.Equal(t, "run-1", entries[0].ContextMap()["run_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestBotLogger_PersistsAsynchronously(t *testing.T) {
	// Arrange
	core, _ := observer.New(zapcore.InfoLevel)
	persister := &recordingPersister{}
	logger := logging.NewBotLoggerWithCore(core, "run-7", persister)

	// Act
	logger.Log(common.LevelInfo, "Placed buy order", nil)
	logger.Log(common.LevelError, "Failed to place buy order", nil)
	logger.Flush()

	// Assert
	assert.ElementsMatch(t, []string{"INFO:Placed buy order", "ERROR:Failed to place buy order"}, persister.messages)
	assert.Equal(t, []string{"run-7", "run-7"}, persister.runIDs)
}

func TestBotLogger_ContextRoundTrip(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.NewBotLoggerWithCore(core, "", nil)
	ctx := common.WithLogger(context.Background(), logger)

	common.LoggerFromContext(ctx).Log(common.LevelInfo, "hello", nil)

	assert.Equal(t, 1, logs.Len())
}

func TestParseLevel(t *testing.T) {
	level, err := logging.ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)

	_, err = logging.ParseLevel("verbose")
	assert.Error(t, err)
}
