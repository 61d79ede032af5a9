package steps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
)

func (tc *tradeUpContext) cancellingFails(orderID string) error {
	tc.marketplace.SetCancelError(orderID, errors.New("status 500"))
	return nil
}

func (tc *tradeUpContext) theMarketplaceRejects(name string) error {
	tc.marketplace.SetPlaceOutcome(name, market.Rejected("You already have an order for this item"))
	return nil
}

func (tc *tradeUpContext) iPlaceBuyOrdersFor(table *godog.Table) error {
	if err := tc.requireLedger(); err != nil {
		return err
	}

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}

		quantity, err := strconv.Atoi(getCellValue(table, row, "quantity"))
		if err != nil {
			return fmt.Errorf("invalid quantity in row %d: %w", i, err)
		}
		price, err := decimal.NewFromString(getCellValue(table, row, "price"))
		if err != nil {
			return fmt.Errorf("invalid price in row %d: %w", i, err)
		}

		result := tc.ledger.Place(tc.ctx, getCellValue(table, row, "item"), quantity, price)
		tc.placements = append(tc.placements, result)
	}
	return nil
}

func (tc *tradeUpContext) theLedgerCancelsAllOrders() error {
	if err := tc.requireLedger(); err != nil {
		return err
	}
	tc.cancelled = tc.ledger.CancelAll(tc.ctx)
	return nil
}

func (tc *tradeUpContext) theLedgerShouldHoldOrders(expected int) error {
	if err := tc.requireLedger(); err != nil {
		return err
	}
	if got := tc.ledger.Len(); got != expected {
		return fmt.Errorf("expected ledger to hold %d orders, got %d", expected, got)
	}
	return nil
}

func (tc *tradeUpContext) theLedgerShouldStillHold(orderID string) error {
	for _, order := range tc.ledger.Snapshot() {
		if order.ID() == orderID {
			return nil
		}
	}
	return fmt.Errorf("expected ledger to hold %s", orderID)
}

func (tc *tradeUpContext) ordersShouldHaveBeenCancelled(expected int) error {
	if tc.cancelled != expected {
		return fmt.Errorf("expected %d cancelled orders, got %d", expected, tc.cancelled)
	}
	return nil
}

func (tc *tradeUpContext) placementsShouldHaveFailed(expected int) error {
	failed := 0
	for _, result := range tc.placements {
		if result.Err != nil {
			failed++
		}
	}
	if failed != expected {
		return fmt.Errorf("expected %d failed placements, got %d", expected, failed)
	}
	return nil
}

func (tc *tradeUpContext) placementsShouldHaveBeenSimulated(expected int) error {
	simulated := 0
	for _, result := range tc.placements {
		if result.Simulated {
			simulated++
		}
	}
	if simulated != expected {
		return fmt.Errorf("expected %d simulated placements, got %d", expected, simulated)
	}
	return nil
}

func (tc *tradeUpContext) theLastPlacementShouldFailWith(message string) error {
	if len(tc.placements) == 0 {
		return fmt.Errorf("no placements were made")
	}
	last := tc.placements[len(tc.placements)-1]
	if last.Err == nil {
		return fmt.Errorf("expected last placement to fail with %q, but it succeeded", message)
	}
	if !strings.Contains(last.Err.Error(), message) {
		return fmt.Errorf("expected error containing %q, got %q", message, last.Err.Error())
	}
	return nil
}

func (tc *tradeUpContext) theMarketplaceShouldHaveReceivedBuyOrders(expected int) error {
	if got := len(tc.marketplace.PlaceCalls()); got != expected {
		return fmt.Errorf("expected %d buy orders at the marketplace, got %d", expected, got)
	}
	return nil
}

func registerOrderLedgerSteps(sc *godog.ScenarioContext, tc *tradeUpContext) {
	sc.Step(`^cancelling "([^"]*)" fails$`, tc.cancellingFails)
	sc.Step(`^the marketplace rejects "([^"]*)"$`, tc.theMarketplaceRejects)
	sc.Step(`^I place buy orders for:$`, tc.iPlaceBuyOrdersFor)
	sc.Step(`^the ledger cancels all orders$`, tc.theLedgerCancelsAllOrders)
	sc.Step(`^the ledger should hold (\d+) orders$`, tc.theLedgerShouldHoldOrders)
	sc.Step(`^the ledger should still hold "([^"]*)"$`, tc.theLedgerShouldStillHold)
	sc.Step(`^(\d+) orders should have been cancelled$`, tc.ordersShouldHaveBeenCancelled)
	sc.Step(`^(\d+) placements should have failed$`, tc.placementsShouldHaveFailed)
	sc.Step(`^(\d+) placements should have been simulated$`, tc.placementsShouldHaveBeenSimulated)
	sc.Step(`^the last placement should fail with "([^"]*)"$`, tc.theLastPlacementShouldFailWith)
	sc.Step(`^the marketplace should have received (\d+) buy orders$`, tc.theMarketplaceShouldHaveReceivedBuyOrders)
}
