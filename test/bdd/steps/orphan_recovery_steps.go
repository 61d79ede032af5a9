package steps

import (
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/persistence"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/commands"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/test/helpers"
)

func (tc *tradeUpContext) journal() (*persistence.GormOrderJournalRepository, error) {
	if helpers.SharedTestDB == nil {
		return nil, fmt.Errorf("shared test database not initialized")
	}
	return persistence.NewGormOrderJournalRepository(helpers.SharedTestDB), nil
}

func (tc *tradeUpContext) theOrderJournalContains(table *godog.Table) error {
	journal, err := tc.journal()
	if err != nil {
		return err
	}

	placedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header
		}

		orderID := getCellValue(table, row, "order_id")
		order, err := market.NewActiveOrder(orderID, getCellValue(table, row, "item"), 1, decimal.RequireFromString("5.00"))
		if err != nil {
			return err
		}
		if err := journal.RecordPlaced(tc.ctx, getCellValue(table, row, "run_id"), order, placedAt.Add(time.Duration(i)*time.Minute)); err != nil {
			return err
		}

		switch market.JournalStatus(getCellValue(table, row, "status")) {
		case market.JournalOpen:
		case market.JournalCancelled:
			err = journal.RecordCancelled(tc.ctx, orderID, placedAt.Add(time.Hour))
		case market.JournalCancelFailed:
			err = journal.RecordCancelFailed(tc.ctx, orderID, "status 502")
		default:
			err = fmt.Errorf("unknown status %q", getCellValue(table, row, "status"))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (tc *tradeUpContext) recoverOrphanedOrders(excludeRunID string, dryRun bool) error {
	journal, err := tc.journal()
	if err != nil {
		return err
	}

	handler := commands.NewRecoverOrphanedOrdersHandler(journal, tc.marketplace, nil)
	resp, err := handler.Handle(tc.ctx, &commands.RecoverOrphanedOrdersCommand{
		ExcludeRunID: excludeRunID,
		DryRun:       dryRun,
	})
	if err != nil {
		return err
	}
	tc.recovery = resp.(*commands.RecoverOrphanedOrdersResponse)
	return nil
}

func (tc *tradeUpContext) iRecoverOrphanedOrdersExcludingRun(runID string) error {
	return tc.recoverOrphanedOrders(runID, false)
}

func (tc *tradeUpContext) iPreviewOrphanedOrdersExcludingRun(runID string) error {
	return tc.recoverOrphanedOrders(runID, true)
}

func (tc *tradeUpContext) orphanedOrdersShouldHaveBeenFound(expected int) error {
	if tc.recovery == nil {
		return fmt.Errorf("recovery has not run")
	}
	if tc.recovery.Found != expected {
		return fmt.Errorf("expected %d orphaned orders, found %d", expected, tc.recovery.Found)
	}
	return nil
}

func (tc *tradeUpContext) orphanedOrdersShouldHaveBeenCancelled(expected int) error {
	if tc.recovery == nil {
		return fmt.Errorf("recovery has not run")
	}
	if tc.recovery.Cancelled != expected {
		return fmt.Errorf("expected %d orphaned orders cancelled, got %d", expected, tc.recovery.Cancelled)
	}
	return nil
}

func (tc *tradeUpContext) journalEntryShouldHaveStatus(orderID, status string) error {
	journal, err := tc.journal()
	if err != nil {
		return err
	}

	entries, err := journal.List(tc.ctx, nil, 0)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.OrderID != orderID {
			continue
		}
		if string(entry.Status) != status {
			return fmt.Errorf("expected journal entry %s to be %s, got %s", orderID, status, entry.Status)
		}
		return nil
	}
	return fmt.Errorf("journal entry %s not found", orderID)
}

func (tc *tradeUpContext) theMarketplaceShouldHaveReceivedCancellations(expected int) error {
	if got := len(tc.marketplace.CancelCalls()); got != expected {
		return fmt.Errorf("expected %d cancellations at the marketplace, got %d", expected, got)
	}
	return nil
}

func registerOrphanRecoverySteps(sc *godog.ScenarioContext, tc *tradeUpContext) {
	sc.Step(`^the order journal contains:$`, tc.theOrderJournalContains)
	sc.Step(`^I recover orphaned orders excluding run "([^"]*)"$`, tc.iRecoverOrphanedOrdersExcludingRun)
	sc.Step(`^I preview orphaned orders excluding run "([^"]*)"$`, tc.iPreviewOrphanedOrdersExcludingRun)
	sc.Step(`^(\d+) orphaned orders should have been found$`, tc.orphanedOrdersShouldHaveBeenFound)
	sc.Step(`^(\d+) orphaned orders should have been cancelled$`, tc.orphanedOrdersShouldHaveBeenCancelled)
	sc.Step(`^journal entry "([^"]*)" should have status "([^"]*)"$`, tc.journalEntryShouldHaveStatus)
	sc.Step(`^the marketplace should have received (\d+) cancellations$`, tc.theMarketplaceShouldHaveReceivedCancellations)
}
