package services

import (
	"context"
	"sync"
	"time"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/metrics"
	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

// RecipeCache is a time-to-live cache of recipe documents keyed by API identifier.
//
// The identifier set is fixed by configuration, so entries are never evicted; a stale entry
// is treated as absent and replaced wholesale on the next successful fetch.
type RecipeCache struct {
	source recipe.Source
	expiry time.Duration
	clock  shared.Clock

	mu      sync.RWMutex
	entries map[string]recipe.CacheEntry
}

// NewRecipeCache creates a recipe cache. If clock is nil, uses RealClock.
func NewRecipeCache(source recipe.Source, expiry time.Duration, clock shared.Clock) *RecipeCache {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RecipeCache{
		source:  source,
		expiry:  expiry,
		clock:   clock,
		entries: make(map[string]recipe.CacheEntry),
	}
}

// GetOrFetch returns the cached document for id, fetching it when missing or stale.
// A failed fetch yields an unavailable document rather than an error.
func (c *RecipeCache) GetOrFetch(ctx context.Context, id string) *recipe.Document {
	logger := common.LoggerFromContext(ctx)
	now := c.clock.Now()

	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if ok && entry.IsFresh(now, c.expiry) {
		metrics.RecordRecipeFetch("hit")
		return entry.Document
	}

	doc, err := c.source.Fetch(ctx, id)
	if err != nil || doc == nil {
		logger.Log(common.LevelError, "Failed to fetch recipe data", map[string]interface{}{
			"recipe": id,
			"error":  errString(err),
		})
		metrics.RecordRecipeFetch("unavailable")
		return recipe.UnavailableDocument(id)
	}

	c.mu.Lock()
	c.entries[id] = recipe.CacheEntry{Document: doc, FetchedAt: now}
	c.mu.Unlock()

	metrics.RecordRecipeFetch("fetched")
	return doc
}

// Len returns the number of cached entries, fresh or stale
func (c *RecipeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func errString(err error) string {
	if err == nil {
		return "no document returned"
	}
	return err.Error()
}
