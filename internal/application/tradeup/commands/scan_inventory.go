package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
)

// ScanInventoryCommand lists held items that exceed a recipe's float tolerance
type ScanInventoryCommand struct {
	RecipeIDs []string
}

// ScanInventoryResponse summarizes one inventory pass
type ScanInventoryResponse struct {
	Items   int
	Results []services.ListingResult
}

// Count returns how many results ended with the given status
func (r *ScanInventoryResponse) Count(status services.ListingStatus) int {
	n := 0
	for _, result := range r.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}

// ScanInventoryHandler handles the ScanInventory command
type ScanInventoryHandler struct {
	cache     *services.RecipeCache
	inventory market.InventorySource
	scanner   *services.InventoryScanner
}

// NewScanInventoryHandler creates a new ScanInventoryHandler
func NewScanInventoryHandler(
	cache *services.RecipeCache,
	inventory market.InventorySource,
	scanner *services.InventoryScanner,
) *ScanInventoryHandler {
	return &ScanInventoryHandler{
		cache:     cache,
		inventory: inventory,
		scanner:   scanner,
	}
}

// Handle executes the ScanInventory command.
// An inventory fetch failure is returned so the caller can log it and move on to the next cycle.
func (h *ScanInventoryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ScanInventoryCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ScanInventoryCommand")
	}

	items, err := h.inventory.CurrentInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}

	docs := make([]*recipe.Document, 0, len(cmd.RecipeIDs))
	for _, id := range cmd.RecipeIDs {
		docs = append(docs, h.cache.GetOrFetch(ctx, id))
	}

	response := &ScanInventoryResponse{
		Items:   len(items),
		Results: h.scanner.ScanAndList(ctx, items, docs),
	}

	common.LoggerFromContext(ctx).Log(common.LevelDebug, "Inventory scan complete", map[string]interface{}{
		"items":      response.Items,
		"candidates": len(response.Results),
		"listed":     response.Count(services.ListingListed),
	})

	return response, nil
}
