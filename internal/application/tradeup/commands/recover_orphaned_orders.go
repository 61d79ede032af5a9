package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

// RecoverOrphanedOrdersCommand cancels buy orders a previous run journaled but never cancelled,
// typically because that process was killed before its shutdown path ran.
type RecoverOrphanedOrdersCommand struct {
	ExcludeRunID string // the current run; its orders belong to the live ledger
	DryRun       bool
}

// RecoverOrphanedOrdersResponse reports what recovery did
type RecoverOrphanedOrdersResponse struct {
	Found     int
	Cancelled int
	Failed    int
	Orders    []*market.JournalEntry
}

// RecoverOrphanedOrdersHandler handles the RecoverOrphanedOrders command
type RecoverOrphanedOrdersHandler struct {
	journal     market.OrderJournal
	marketplace market.Marketplace
	clock       shared.Clock
}

// NewRecoverOrphanedOrdersHandler creates a new RecoverOrphanedOrdersHandler
func NewRecoverOrphanedOrdersHandler(
	journal market.OrderJournal,
	marketplace market.Marketplace,
	clock shared.Clock,
) *RecoverOrphanedOrdersHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &RecoverOrphanedOrdersHandler{
		journal:     journal,
		marketplace: marketplace,
		clock:       clock,
	}
}

// Handle executes the RecoverOrphanedOrders command.
// Every outstanding entry is attempted; one failure does not stop the rest.
func (h *RecoverOrphanedOrdersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RecoverOrphanedOrdersCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *RecoverOrphanedOrdersCommand")
	}

	logger := common.LoggerFromContext(ctx)

	outstanding, err := h.journal.FindOutstanding(ctx, cmd.ExcludeRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to read order journal: %w", err)
	}

	response := &RecoverOrphanedOrdersResponse{
		Found:  len(outstanding),
		Orders: outstanding,
	}
	if len(outstanding) == 0 || cmd.DryRun {
		return response, nil
	}

	logger.Log(common.LevelWarning, "Found buy orders left open by a previous run", map[string]interface{}{
		"count": len(outstanding),
	})

	for _, entry := range outstanding {
		if err := h.marketplace.CancelBuyOrder(ctx, entry.OrderID); err != nil {
			response.Failed++
			logger.Log(common.LevelError, "Failed to cancel orphaned buy order", map[string]interface{}{
				"order_id": entry.OrderID,
				"run_id":   entry.RunID,
				"item":     entry.ItemName,
				"error":    err.Error(),
			})
			if jerr := h.journal.RecordCancelFailed(ctx, entry.OrderID, err.Error()); jerr != nil {
				logger.Log(common.LevelWarning, "Failed to journal cancellation failure", map[string]interface{}{
					"order_id": entry.OrderID,
					"error":    jerr.Error(),
				})
			}
			continue
		}

		response.Cancelled++
		logger.Log(common.LevelInfo, "Cancelled orphaned buy order", map[string]interface{}{
			"order_id": entry.OrderID,
			"run_id":   entry.RunID,
			"item":     entry.ItemName,
		})
		if jerr := h.journal.RecordCancelled(ctx, entry.OrderID, h.clock.Now()); jerr != nil {
			logger.Log(common.LevelWarning, "Failed to journal cancellation", map[string]interface{}{
				"order_id": entry.OrderID,
				"error":    jerr.Error(),
			})
		}
	}

	return response, nil
}
