package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
)

// PlaceBuyOrdersCommand evaluates every recipe and stages the resulting buy intents
type PlaceBuyOrdersCommand struct {
	RecipeIDs []string // normalized API urls
}

// PlaceBuyOrdersResponse summarizes one placement pass
type PlaceBuyOrdersResponse struct {
	Intents   []market.BuyIntent
	Results   []market.PlacementResult
	Placed    int
	Simulated int
	Failed    int
}

// PlaceBuyOrdersHandler handles the PlaceBuyOrders command
type PlaceBuyOrdersHandler struct {
	cache  *services.RecipeCache
	engine *services.BuyDecisionEngine
	ledger *services.OrderLedger
}

// NewPlaceBuyOrdersHandler creates a new PlaceBuyOrdersHandler
func NewPlaceBuyOrdersHandler(
	cache *services.RecipeCache,
	engine *services.BuyDecisionEngine,
	ledger *services.OrderLedger,
) *PlaceBuyOrdersHandler {
	return &PlaceBuyOrdersHandler{
		cache:  cache,
		engine: engine,
		ledger: ledger,
	}
}

// Handle executes the PlaceBuyOrders command.
// Per-recipe and per-group failures are absorbed; the command itself only fails on a bad request.
func (h *PlaceBuyOrdersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*PlaceBuyOrdersCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *PlaceBuyOrdersCommand")
	}

	logger := common.LoggerFromContext(ctx)
	response := &PlaceBuyOrdersResponse{}

	for _, id := range cmd.RecipeIDs {
		if ctx.Err() != nil {
			break
		}

		doc := h.cache.GetOrFetch(ctx, id)
		intents := h.engine.Evaluate(ctx, doc)
		response.Intents = append(response.Intents, intents...)

		for _, intent := range intents {
			if ctx.Err() != nil {
				break
			}
			for _, result := range h.ledger.PlaceIntent(ctx, intent) {
				response.Results = append(response.Results, result)
				switch {
				case result.Err != nil:
					response.Failed++
				case result.Simulated:
					response.Simulated++
				default:
					response.Placed++
				}
			}
		}
	}

	logger.Log(common.LevelInfo, "Buy order pass complete", map[string]interface{}{
		"recipes":   len(cmd.RecipeIDs),
		"intents":   len(response.Intents),
		"placed":    response.Placed,
		"simulated": response.Simulated,
		"failed":    response.Failed,
	})

	return response, nil
}
