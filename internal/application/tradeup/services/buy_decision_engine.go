package services

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/metrics"
	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

// BuyDecisionEngine decides which demand groups of a recipe justify a new buy order.
//
// Policy: bid at parity with the best standing buy order, never above it, and only when that
// price is strictly below the recipe's reference price. Evaluation is read-only against the
// marketplace; nothing is placed until the OrderLedger realizes an intent.
type BuyDecisionEngine struct {
	resolver         recipe.SubstituteResolver
	probe            market.OrderBookProbe
	probeConcurrency int
}

// NewBuyDecisionEngine creates a decision engine.
// probeConcurrency bounds parallel probes within one group; values below 1 mean serial probing.
func NewBuyDecisionEngine(resolver recipe.SubstituteResolver, probe market.OrderBookProbe, probeConcurrency int) *BuyDecisionEngine {
	if probeConcurrency < 1 {
		probeConcurrency = 1
	}
	return &BuyDecisionEngine{
		resolver:         resolver,
		probe:            probe,
		probeConcurrency: probeConcurrency,
	}
}

// GroupEvaluation is the full reasoning for one demand group
type GroupEvaluation struct {
	Group       *recipe.DemandGroup
	Substitutes []recipe.Substitute
	HighestBid  decimal.Decimal
	Intent      *market.BuyIntent
}

// Evaluate returns the buy intents for every group of the document worth bidding on
func (e *BuyDecisionEngine) Evaluate(ctx context.Context, doc *recipe.Document) []market.BuyIntent {
	var intents []market.BuyIntent
	for _, evaluation := range e.EvaluateGroups(ctx, doc) {
		if evaluation.Intent != nil {
			intents = append(intents, *evaluation.Intent)
		}
	}
	return intents
}

// EvaluateGroups evaluates every group of the document and keeps the intermediate observations.
// Unavailable documents contribute no groups.
func (e *BuyDecisionEngine) EvaluateGroups(ctx context.Context, doc *recipe.Document) []GroupEvaluation {
	if doc == nil || !doc.Available() {
		return nil
	}

	groups := recipe.Group(doc.Requirements())
	evaluations := make([]GroupEvaluation, 0, groups.Len())

	for _, group := range groups.All() {
		if ctx.Err() != nil {
			break
		}
		evaluations = append(evaluations, e.evaluateGroup(ctx, group, doc.Premium()))
	}

	return evaluations
}

func (e *BuyDecisionEngine) evaluateGroup(ctx context.Context, group *recipe.DemandGroup, premium bool) GroupEvaluation {
	logger := common.LoggerFromContext(ctx)

	substitutes := e.resolver.FindSubstitutes(ctx, group.Representative(), premium)
	names := make([]string, len(substitutes))
	for i, sub := range substitutes {
		names[i] = recipe.MarketHashName(premium, sub.Name, group.Key.Wear)
	}

	highest := e.highestBid(ctx, names)

	evaluation := GroupEvaluation{
		Group:       group,
		Substitutes: substitutes,
		HighestBid:  highest,
	}

	if len(names) == 0 {
		logger.Log(common.LevelInfo, "No substitutes found for group", map[string]interface{}{
			"collection": group.Key.Collection,
			"wear":       group.Key.Wear.String(),
		})
		return evaluation
	}

	if !ShouldPlaceBuyOrder(highest, group.ReferencePrice) {
		logger.Log(common.LevelDebug, "Standing bid not below reference price", map[string]interface{}{
			"collection":      group.Key.Collection,
			"wear":            group.Key.Wear.String(),
			"highest_bid":     highest.StringFixed(2),
			"reference_price": group.ReferencePrice.StringFixed(2),
		})
		return evaluation
	}

	evaluation.Intent = &market.BuyIntent{
		Targets:        names,
		Quantity:       group.Quantity,
		UnitPrice:      highest,
		ReferencePrice: group.ReferencePrice,
	}
	return evaluation
}

// highestBid probes every name and returns the maximum observation.
// A failed probe counts as a zero observation; all probes finish before the maximum is taken.
func (e *BuyDecisionEngine) highestBid(ctx context.Context, names []string) decimal.Decimal {
	logger := common.LoggerFromContext(ctx)
	observations := make([]decimal.Decimal, len(names))

	g := new(errgroup.Group)
	g.SetLimit(e.probeConcurrency)

	for i, name := range names {
		g.Go(func() error {
			price, err := e.probe.HighestBuyOrder(ctx, name)
			if err != nil {
				logger.Log(common.LevelError, "Failed to get highest buy order", map[string]interface{}{
					"item":  name,
					"error": err.Error(),
				})
				metrics.RecordPriceProbe(false)
				observations[i] = decimal.Zero
				return nil
			}
			metrics.RecordPriceProbe(true)
			observations[i] = price
			return nil
		})
	}
	_ = g.Wait()

	highest := decimal.Zero
	for _, observed := range observations {
		highest = shared.MaxAmount(highest, observed)
	}
	return highest
}

// ShouldPlaceBuyOrder is the decision rule: bid only when the best standing bid is strictly
// cheaper than the reference price. Equal prices are not an opportunity.
func ShouldPlaceBuyOrder(highestBid, referencePrice decimal.Decimal) bool {
	return highestBid.LessThan(referencePrice)
}
