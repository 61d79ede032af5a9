package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
)

type wearContext struct {
	bucket     recipe.WearBucket
	marketName string

	apiQuery string
	linkErr  error
}

func (wc *wearContext) reset() {
	wc.bucket = recipe.FactoryNew
	wc.marketName = ""
	wc.apiQuery = ""
	wc.linkErr = nil
}

// Wear steps

func (wc *wearContext) iClassifyTheFloatValue(quality float64) error {
	wc.bucket = recipe.Classify(quality)
	return nil
}

func (wc *wearContext) theWearBucketShouldBe(expected string) error {
	if wc.bucket.String() != expected {
		return fmt.Errorf("expected wear bucket %q, got %q", expected, wc.bucket.String())
	}
	return nil
}

func (wc *wearContext) theConditionCodeShouldBe(expected string) error {
	if wc.bucket.ConditionCode() != expected {
		return fmt.Errorf("expected condition code %q, got %q", expected, wc.bucket.ConditionCode())
	}
	return nil
}

func (wc *wearContext) iComposeTheMarketName(base string, quality float64, statTrak string) error {
	wc.marketName = recipe.MarketHashName(statTrak == "true", base, recipe.Classify(quality))
	return nil
}

func (wc *wearContext) theMarketNameShouldBe(expected string) error {
	if wc.marketName != expected {
		return fmt.Errorf("expected market name %q, got %q", expected, wc.marketName)
	}
	return nil
}

// Share link steps

func (wc *wearContext) iNormalizeTheShareLink(link string) error {
	wc.apiQuery, wc.linkErr = recipe.NormalizeLink(link, "")
	return nil
}

func (wc *wearContext) theLinkShouldBeAccepted() error {
	if wc.linkErr != nil {
		return fmt.Errorf("expected link to be accepted, got error: %v", wc.linkErr)
	}
	return nil
}

func (wc *wearContext) theLinkShouldBeRejectedAsMalformed() error {
	if wc.linkErr == nil {
		return fmt.Errorf("expected link to be rejected, got query %q", wc.apiQuery)
	}
	if !errors.Is(wc.linkErr, recipe.ErrMalformedLink) {
		return fmt.Errorf("expected malformed link error, got: %v", wc.linkErr)
	}
	return nil
}

func (wc *wearContext) theAPIQueryShouldBe(expected string) error {
	if wc.apiQuery != expected {
		return fmt.Errorf("expected API query\n  %s\ngot\n  %s", expected, wc.apiQuery)
	}
	return nil
}

func InitializeWearScenario(sc *godog.ScenarioContext) {
	wc := &wearContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		wc.reset()
		return ctx, nil
	})

	sc.Step(`^I classify the float value (\d+(?:\.\d+)?)$`, wc.iClassifyTheFloatValue)
	sc.Step(`^the wear bucket should be "([^"]*)"$`, wc.theWearBucketShouldBe)
	sc.Step(`^the condition code should be "([^"]*)"$`, wc.theConditionCodeShouldBe)
	sc.Step(`^I compose the market name for "([^"]*)" at float (\d+(?:\.\d+)?) with StatTrak (true|false)$`, wc.iComposeTheMarketName)
	sc.Step(`^the market name should be "([^"]*)"$`, wc.theMarketNameShouldBe)

	sc.Step(`^I normalize the share link "([^"]*)"$`, wc.iNormalizeTheShareLink)
	sc.Step(`^the link should be accepted$`, wc.theLinkShouldBeAccepted)
	sc.Step(`^the link should be rejected as malformed$`, wc.theLinkShouldBeRejectedAsMalformed)
	sc.Step(`^the API query should be "([^"]*)"$`, wc.theAPIQueryShouldBe)
}
