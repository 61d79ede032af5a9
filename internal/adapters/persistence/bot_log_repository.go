package persistence

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

// GormBotLogRepository persists bot log entries.
// Identical messages from the same run are written at most once per deduplication window,
// so a failing probe retried every cycle does not flood the table.
type GormBotLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	dedupCache   map[string]time.Time // key: runID+level+message, value: last logged time
	dedupMu      sync.Mutex
	dedupWindow  time.Duration
	dedupMaxSize int
}

// NewGormBotLogRepository creates a new bot log repository
// If clock is nil, uses RealClock (production behavior)
func NewGormBotLogRepository(db *gorm.DB, clock shared.Clock) *GormBotLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormBotLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  60 * time.Second,
		dedupMaxSize: 10000,
	}
}

// Log writes a log entry with time-windowed deduplication
func (r *GormBotLogRepository) Log(ctx context.Context, runID, level, message string, metadata map[string]interface{}) error {
	now := r.clock.Now()
	cacheKey := runID + "|" + level + "|" + message

	r.dedupMu.Lock()
	if lastLogged, exists := r.dedupCache[cacheKey]; exists && now.Sub(lastLogged) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}

	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCache(now)
	}
	r.dedupCache[cacheKey] = now
	r.dedupMu.Unlock()

	// Metadata is optional; an unmarshalable map is dropped rather than failing the write
	var metadataJSON datatypes.JSON
	if len(metadata) > 0 {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = datatypes.JSON(jsonBytes)
		}
	}

	model := &BotLogModel{
		RunID:     runID,
		Timestamp: now,
		Level:     level,
		Message:   message,
		Metadata:  metadataJSON,
	}

	return r.db.WithContext(ctx).Create(model).Error
}

// cleanupDedupCache removes entries older than the deduplication window.
// Must be called while holding dedupMu.
func (r *GormBotLogRepository) cleanupDedupCache(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, timestamp := range r.dedupCache {
		if timestamp.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// GetLogs returns entries newest first
func (r *GormBotLogRepository) GetLogs(ctx context.Context, filter common.BotLogFilter) ([]common.BotLogEntry, error) {
	var models []BotLogModel

	query := r.db.WithContext(ctx).Model(&BotLogModel{})

	if filter.RunID != "" {
		query = query.Where("run_id = ?", filter.RunID)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Since != nil {
		query = query.Where("timestamp > ?", *filter.Since)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query = query.Order("timestamp DESC").Order("id DESC").Limit(limit).Offset(filter.Offset)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entries := make([]common.BotLogEntry, len(models))
	for i, model := range models {
		var metadata map[string]interface{}
		if len(model.Metadata) > 0 {
			if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
				metadata = nil
			}
		}

		entries[i] = common.BotLogEntry{
			ID:        model.ID,
			RunID:     model.RunID,
			Timestamp: model.Timestamp,
			Level:     model.Level,
			Message:   model.Message,
			Metadata:  metadata,
		}
	}

	return entries, nil
}

var _ common.BotLogRepository = (*GormBotLogRepository)(nil)
