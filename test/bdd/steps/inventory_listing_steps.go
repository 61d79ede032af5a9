package steps

import (
	"fmt"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
)

func (tc *tradeUpContext) theInventoryHolds(table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}

		quality, err := parseFloatCell(table, row, "quality")
		if err != nil {
			return err
		}

		tc.inventory = append(tc.inventory, market.InventoryItem{
			AssetID:        getCellValue(table, row, "asset_id"),
			Name:           getCellValue(table, row, "name"),
			MarketHashName: getCellValue(table, row, "market_hash_name"),
			Quality:        quality,
		})
	}
	return nil
}

func (tc *tradeUpContext) theLowestAskForIs(name, price string) error {
	ask, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	tc.marketplace.SetLowestAsk(name, ask)
	return nil
}

func (tc *tradeUpContext) theInventoryIsScanned() error {
	if tc.scanner == nil {
		return fmt.Errorf("no scanner: use 'live trading is enabled' first")
	}

	docs := make([]*recipe.Document, 0, len(tc.documents))
	for _, doc := range tc.documents {
		docs = append(docs, doc)
	}

	tc.listings = tc.scanner.ScanAndList(tc.ctx, tc.inventory, docs)
	return nil
}

func (tc *tradeUpContext) listingFor(assetID string) (services.ListingResult, bool) {
	for _, listing := range tc.listings {
		if listing.Candidate.Item.AssetID == assetID {
			return listing, true
		}
	}
	return services.ListingResult{}, false
}

func (tc *tradeUpContext) assetShouldBeListedWithStatus(assetID string, status services.ListingStatus, price string) error {
	listing, ok := tc.listingFor(assetID)
	if !ok {
		return fmt.Errorf("asset %s was not picked for listing", assetID)
	}
	if listing.Status != status {
		return fmt.Errorf("expected asset %s to be %s, got %s", assetID, status, listing.Status)
	}

	expected := decimal.RequireFromString(price)
	if !listing.Price.Equal(expected) {
		return fmt.Errorf("expected asset %s priced at %s, got %s", assetID, expected.StringFixed(2), listing.Price.StringFixed(2))
	}
	return nil
}

func (tc *tradeUpContext) assetShouldBeListedAt(assetID, price string) error {
	if err := tc.assetShouldBeListedWithStatus(assetID, services.ListingListed, price); err != nil {
		return err
	}

	for _, call := range tc.marketplace.SellCalls() {
		if call.AssetID == assetID {
			return nil
		}
	}
	return fmt.Errorf("no sell order reached the marketplace for asset %s", assetID)
}

func (tc *tradeUpContext) assetShouldBeSimulatedAt(assetID, price string) error {
	return tc.assetShouldBeListedWithStatus(assetID, services.ListingSimulated, price)
}

func (tc *tradeUpContext) assetShouldNotBeListed(assetID string) error {
	if listing, ok := tc.listingFor(assetID); ok {
		return fmt.Errorf("expected asset %s to be kept, got %s listing", assetID, listing.Status)
	}
	return nil
}

func (tc *tradeUpContext) assetShouldBeSkipped(assetID string) error {
	listing, ok := tc.listingFor(assetID)
	if !ok {
		return fmt.Errorf("asset %s was not picked for listing", assetID)
	}
	if listing.Status != services.ListingSkipped {
		return fmt.Errorf("expected asset %s to be skipped, got %s", assetID, listing.Status)
	}
	return nil
}

func (tc *tradeUpContext) theMarketplaceShouldHaveReceivedSellOrders(expected int) error {
	if got := len(tc.marketplace.SellCalls()); got != expected {
		return fmt.Errorf("expected %d sell orders at the marketplace, got %d", expected, got)
	}
	return nil
}

func registerInventoryListingSteps(sc *godog.ScenarioContext, tc *tradeUpContext) {
	sc.Step(`^the inventory holds:$`, tc.theInventoryHolds)
	sc.Step(`^the lowest ask for "([^"]*)" is (\d+\.\d+)$`, tc.theLowestAskForIs)
	sc.Step(`^the inventory is scanned$`, tc.theInventoryIsScanned)
	sc.Step(`^asset "([^"]*)" should be listed at (\d+\.\d+)$`, tc.assetShouldBeListedAt)
	sc.Step(`^asset "([^"]*)" should be simulated at (\d+\.\d+)$`, tc.assetShouldBeSimulatedAt)
	sc.Step(`^asset "([^"]*)" should not be listed$`, tc.assetShouldNotBeListed)
	sc.Step(`^asset "([^"]*)" should be skipped$`, tc.assetShouldBeSkipped)
	sc.Step(`^the marketplace should have received (\d+) sell orders$`, tc.theMarketplaceShouldHaveReceivedSellOrders)
}
