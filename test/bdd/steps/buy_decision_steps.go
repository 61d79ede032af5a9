package steps

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
)

func (tc *tradeUpContext) theSubstitutesForAre(requirement, names string) error {
	var subs []string
	for _, name := range strings.Split(names, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			subs = append(subs, trimmed)
		}
	}
	tc.resolver.SetSubstitutes(requirement, subs...)
	return nil
}

func (tc *tradeUpContext) theHighestBuyOrderForIs(name, price string) error {
	bid, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	tc.marketplace.SetHighestBid(name, bid)
	return nil
}

func (tc *tradeUpContext) probingFails(name string) error {
	tc.marketplace.SetProbeError(name, fmt.Errorf("status 500"))
	return nil
}

func (tc *tradeUpContext) iEvaluateTheRecipe(id string) error {
	doc, ok := tc.documents[id]
	if !ok {
		return fmt.Errorf("unknown recipe %q", id)
	}
	engine := services.NewBuyDecisionEngine(tc.resolver, tc.marketplace, 2)
	tc.intents = engine.Evaluate(tc.ctx, doc)
	return nil
}

func (tc *tradeUpContext) buyIntentsShouldBeProduced(expected int) error {
	if len(tc.intents) != expected {
		return fmt.Errorf("expected %d buy intents, got %d", expected, len(tc.intents))
	}
	return nil
}

func (tc *tradeUpContext) theBuyIntentShouldBid(price string, quantity, targets int) error {
	if len(tc.intents) != 1 {
		return fmt.Errorf("expected exactly one buy intent, got %d", len(tc.intents))
	}
	intent := tc.intents[0]

	expected := decimal.RequireFromString(price)
	if !intent.UnitPrice.Equal(expected) {
		return fmt.Errorf("expected unit price %s, got %s", expected.StringFixed(2), intent.UnitPrice.StringFixed(2))
	}
	if intent.Quantity != quantity {
		return fmt.Errorf("expected quantity %d, got %d", quantity, intent.Quantity)
	}
	if len(intent.Targets) != targets {
		return fmt.Errorf("expected %d targets, got %d: %v", targets, len(intent.Targets), intent.Targets)
	}
	return nil
}

func (tc *tradeUpContext) theBuyIntentShouldTarget(name string) error {
	for _, intent := range tc.intents {
		for _, target := range intent.Targets {
			if target == name {
				return nil
			}
		}
	}
	return fmt.Errorf("no buy intent targets %q", name)
}

func (tc *tradeUpContext) noPriceProbesShouldHaveBeenMade() error {
	if calls := tc.marketplace.ProbeCalls(); len(calls) != 0 {
		return fmt.Errorf("expected no price probes, got %v", calls)
	}
	return nil
}

func registerBuyDecisionSteps(sc *godog.ScenarioContext, tc *tradeUpContext) {
	sc.Step(`^the substitutes for "([^"]*)" are "([^"]*)"$`, tc.theSubstitutesForAre)
	sc.Step(`^the highest buy order for "([^"]*)" is (\d+\.\d+)$`, tc.theHighestBuyOrderForIs)
	sc.Step(`^probing "([^"]*)" fails$`, tc.probingFails)
	sc.Step(`^I evaluate the recipe "([^"]*)"$`, tc.iEvaluateTheRecipe)
	sc.Step(`^(\d+) buy intents should be produced$`, tc.buyIntentsShouldBeProduced)
	sc.Step(`^the buy intent should bid (\d+\.\d+) for (\d+) of each of (\d+) items$`, tc.theBuyIntentShouldBid)
	sc.Step(`^the buy intent should target "([^"]*)"$`, tc.theBuyIntentShouldTarget)
	sc.Step(`^no price probes should have been made$`, tc.noPriceProbesShouldHaveBeenMade)
}
