package steps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/commands"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
	"github.com/andrescamacho/tradeup-bot/test/helpers"
)

// tradeUpContext holds the collaborators shared by every trading scenario
type tradeUpContext struct {
	ctx context.Context

	marketplace *helpers.MockMarketplace
	resolver    *helpers.MockSubstituteResolver
	documents   map[string]*recipe.Document
	inventory   []market.InventoryItem

	ledger  *services.OrderLedger
	scanner *services.InventoryScanner

	// Results
	intents    []market.BuyIntent
	placements []market.PlacementResult
	cancelled  int
	listings   []services.ListingResult
	recovery   *commands.RecoverOrphanedOrdersResponse
}

func (tc *tradeUpContext) reset() {
	tc.ctx = context.Background()
	tc.marketplace = helpers.NewMockMarketplace()
	tc.resolver = helpers.NewMockSubstituteResolver()
	tc.documents = make(map[string]*recipe.Document)
	tc.inventory = nil
	tc.ledger = nil
	tc.scanner = nil
	tc.intents = nil
	tc.placements = nil
	tc.cancelled = 0
	tc.listings = nil
	tc.recovery = nil
}

// Shared setup steps

func (tc *tradeUpContext) aRecipeWithRequirements(statTrak, id string, table *godog.Table) error {
	var requirements []recipe.SkinRequirement
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}

		quality, err := parseFloatCell(table, row, "quality")
		if err != nil {
			return err
		}
		maxQuality, err := parseFloatCell(table, row, "max_quality")
		if err != nil {
			return err
		}
		price, err := decimal.NewFromString(getCellValue(table, row, "price"))
		if err != nil {
			return fmt.Errorf("invalid price in row %d: %w", i, err)
		}

		requirements = append(requirements, recipe.SkinRequirement{
			Name:           getCellValue(table, row, "name"),
			Collection:     recipe.Collection{ID: i, Name: getCellValue(table, row, "collection")},
			Rarity:         3,
			Quality:        quality,
			ReferencePrice: price,
			MaxQuality:     maxQuality,
		})
	}

	doc, err := recipe.NewDocument(id, statTrak != "", requirements)
	if err != nil {
		return err
	}
	tc.documents[id] = doc
	return nil
}

func (tc *tradeUpContext) liveTradingIs(state string) error {
	live := state == "enabled"
	tc.ledger = services.NewOrderLedger(tc.marketplace, nil, nil, "run-bdd", live)
	tc.scanner = services.NewInventoryScanner(tc.marketplace, live)
	return nil
}

func (tc *tradeUpContext) requireLedger() error {
	if tc.ledger == nil {
		return fmt.Errorf("no ledger: use 'live trading is enabled' first")
	}
	return nil
}

// getCellValue finds a cell by its header name, using table.Rows[0] as the header
func getCellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	if len(table.Rows) == 0 {
		return ""
	}

	for i, headerCell := range table.Rows[0].Cells {
		if headerCell.Value == columnName {
			if i < len(row.Cells) {
				return row.Cells[i].Value
			}
			return ""
		}
	}

	return ""
}

func parseFloatCell(table *godog.Table, row *messages.PickleTableRow, columnName string) (float64, error) {
	value, err := strconv.ParseFloat(getCellValue(table, row, columnName), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", columnName, getCellValue(table, row, columnName), err)
	}
	return value, nil
}

func InitializeTradeUpScenario(sc *godog.ScenarioContext) {
	tc := &tradeUpContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		if helpers.SharedTestDB != nil {
			if err := helpers.TruncateAllTables(); err != nil {
				return ctx, err
			}
		}
		return ctx, nil
	})

	// Shared setup
	sc.Step(`^a (StatTrak )?recipe "([^"]*)" with requirements:$`, tc.aRecipeWithRequirements)
	sc.Step(`^live trading is (enabled|disabled)$`, tc.liveTradingIs)

	registerBuyDecisionSteps(sc, tc)
	registerOrderLedgerSteps(sc, tc)
	registerInventoryListingSteps(sc, tc)
	registerOrphanRecoverySteps(sc, tc)
}
