package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/metrics"
	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

const defaultShutdownTimeout = 30 * time.Second

// RunTradeBotCommand runs the trading loop until ctx is cancelled (or MaxCycles is reached)
type RunTradeBotCommand struct {
	RecipeLinks     []string // operator share links
	CheckInterval   time.Duration
	ShutdownTimeout time.Duration
	RecoverOrphans  bool   // cancel orders journaled by earlier runs before trading
	RunID           string // excluded from orphan recovery
	MaxCycles       int    // 0 runs until cancelled
}

// RunTradeBotResponse summarizes a finished run
type RunTradeBotResponse struct {
	Recipes   int
	Cycles    int
	Placed    int
	Simulated int
	Listed    int
	Cancelled int
	Remaining int
}

// RunTradeBotHandler orchestrates one run: initial buy orders, the inventory poll loop,
// and the ledger flush on exit. Sub-steps are dispatched through the mediator.
type RunTradeBotHandler struct {
	mediator common.Mediator
	clock    shared.Clock
	apiBase  string
}

// NewRunTradeBotHandler creates a new RunTradeBotHandler
func NewRunTradeBotHandler(mediator common.Mediator, clock shared.Clock, apiBase string) *RunTradeBotHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RunTradeBotHandler{
		mediator: mediator,
		clock:    clock,
		apiBase:  apiBase,
	}
}

// Handle executes the RunTradeBot command.
// Collaborator failures inside a cycle are logged and never end the loop. The ledger flush runs
// exactly once on every exit path with its own bounded context, since ctx is already cancelled
// by the time it runs.
func (h *RunTradeBotHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunTradeBotCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RunTradeBotCommand")
	}

	logger := common.LoggerFromContext(ctx)

	ids := h.normalizeLinks(logger, cmd.RecipeLinks)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no usable recipe links", recipe.ErrMalformedLink)
	}

	result := &RunTradeBotResponse{Recipes: len(ids)}

	var shutdownOnce sync.Once
	shutdown := func() {
		shutdownOnce.Do(func() {
			h.shutdown(ctx, cmd, result)
		})
	}
	defer shutdown()

	logger.Log(common.LevelInfo, "Trade bot started", map[string]interface{}{
		"run_id":         cmd.RunID,
		"recipes":        len(ids),
		"check_interval": cmd.CheckInterval.String(),
	})

	if cmd.RecoverOrphans {
		h.recoverOrphans(ctx, logger, cmd.RunID)
	}

	// Initial buy orders are staged once per run
	if resp, sendErr := h.mediator.Send(ctx, &PlaceBuyOrdersCommand{RecipeIDs: ids}); sendErr != nil {
		logger.Log(common.LevelError, "Failed to place buy orders", map[string]interface{}{
			"error": sendErr.Error(),
		})
	} else if placed, ok := resp.(*PlaceBuyOrdersResponse); ok {
		result.Placed = placed.Placed
		result.Simulated = placed.Simulated
	}

	for ctx.Err() == nil {
		start := h.clock.Now()
		result.Cycles++
		h.runCycle(ctx, logger, ids, result)
		metrics.RecordCycle(h.clock.Now().Sub(start).Seconds())

		if cmd.MaxCycles > 0 && result.Cycles >= cmd.MaxCycles {
			break
		}

		select {
		case <-ctx.Done():
		case <-h.clock.After(cmd.CheckInterval):
		}
	}

	shutdown()
	return result, nil
}

func (h *RunTradeBotHandler) normalizeLinks(logger common.BotLogger, links []string) []string {
	ids := make([]string, 0, len(links))
	for _, link := range links {
		id, err := recipe.NormalizeLink(link, h.apiBase)
		if err != nil {
			logger.Log(common.LevelError, "Skipping malformed recipe link", map[string]interface{}{
				"link":  link,
				"error": err.Error(),
			})
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (h *RunTradeBotHandler) recoverOrphans(ctx context.Context, logger common.BotLogger, runID string) {
	resp, err := h.mediator.Send(ctx, &RecoverOrphanedOrdersCommand{ExcludeRunID: runID})
	if err != nil {
		logger.Log(common.LevelWarning, "Orphaned order recovery failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if recovered, ok := resp.(*RecoverOrphanedOrdersResponse); ok && recovered.Found > 0 {
		logger.Log(common.LevelInfo, "Orphaned order recovery complete", map[string]interface{}{
			"found":     recovered.Found,
			"cancelled": recovered.Cancelled,
			"failed":    recovered.Failed,
		})
	}
}

func (h *RunTradeBotHandler) runCycle(ctx context.Context, logger common.BotLogger, ids []string, result *RunTradeBotResponse) {
	resp, err := h.mediator.Send(ctx, &ScanInventoryCommand{RecipeIDs: ids})
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		logger.Log(common.LevelError, "Inventory cycle failed", map[string]interface{}{
			"cycle": result.Cycles,
			"error": err.Error(),
		})
		return
	}

	if scanned, ok := resp.(*ScanInventoryResponse); ok {
		result.Listed += scanned.Count(services.ListingListed) + scanned.Count(services.ListingSimulated)
	}
}

func (h *RunTradeBotHandler) shutdown(ctx context.Context, cmd *RunTradeBotCommand, result *RunTradeBotResponse) {
	timeout := cmd.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	// Keep context values (logger) but drop the parent's cancellation
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	logger := common.LoggerFromContext(shutdownCtx)
	logger.Log(common.LevelInfo, "Shutting down, cancelling buy orders", nil)

	resp, err := h.mediator.Send(shutdownCtx, &CancelBuyOrdersCommand{})
	if err != nil {
		logger.Log(common.LevelError, "Failed to cancel buy orders", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if cancelled, ok := resp.(*CancelBuyOrdersResponse); ok {
		result.Cancelled = cancelled.Cancelled
		result.Remaining = cancelled.Remaining
		level := common.LevelInfo
		if cancelled.Remaining > 0 {
			level = common.LevelError
		}
		logger.Log(level, "Buy order cancellation complete", map[string]interface{}{
			"cancelled": cancelled.Cancelled,
			"remaining": cancelled.Remaining,
		})
	}
}
