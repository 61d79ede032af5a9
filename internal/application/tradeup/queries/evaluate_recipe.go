package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
)

// EvaluateRecipeQuery fetches one share link and runs the buy decision without placing anything
type EvaluateRecipeQuery struct {
	Link string
}

// EvaluateRecipeResponse is a dry-run view of one recipe
type EvaluateRecipeResponse struct {
	SourceID  string
	Available bool
	Premium   bool
	Groups    []services.GroupEvaluation
}

// EvaluateRecipeHandler handles the EvaluateRecipe query
type EvaluateRecipeHandler struct {
	cache   *services.RecipeCache
	engine  *services.BuyDecisionEngine
	apiBase string
}

// NewEvaluateRecipeHandler creates a new EvaluateRecipeHandler
func NewEvaluateRecipeHandler(cache *services.RecipeCache, engine *services.BuyDecisionEngine, apiBase string) *EvaluateRecipeHandler {
	return &EvaluateRecipeHandler{
		cache:   cache,
		engine:  engine,
		apiBase: apiBase,
	}
}

// Handle executes the EvaluateRecipe query. A malformed link fails before any network call.
func (h *EvaluateRecipeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*EvaluateRecipeQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *EvaluateRecipeQuery")
	}

	id, err := recipe.NormalizeLink(query.Link, h.apiBase)
	if err != nil {
		return nil, err
	}

	doc := h.cache.GetOrFetch(ctx, id)
	if !doc.Available() {
		return &EvaluateRecipeResponse{SourceID: id}, nil
	}

	return &EvaluateRecipeResponse{
		SourceID:  id,
		Available: true,
		Premium:   doc.Premium(),
		Groups:    h.engine.EvaluateGroups(ctx, doc),
	}, nil
}
