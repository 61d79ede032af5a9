package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/application/setup"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/commands"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
	"github.com/andrescamacho/tradeup-bot/test/helpers"
)

const (
	testAPIBase = "http://api.test"
	shareLink   = "https://www.tradeupspy.com/calculator/share/Dust%20Run/0/3/0.2/11/42/20.00/31.50"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func recipeID(t *testing.T) string {
	t.Helper()
	id, err := recipe.NormalizeLink(shareLink, testAPIBase)
	require.NoError(t, err)
	return id
}

// tradingFixture wires real services around the marketplace and recipe doubles
type tradingFixture struct {
	clock       *shared.MockClock
	source      *helpers.MockRecipeSource
	resolver    *helpers.MockSubstituteResolver
	marketplace *helpers.MockMarketplace
	inventory   *helpers.MockInventorySource
	journal     *helpers.MockOrderJournal
	ledger      *services.OrderLedger
	mediator    common.Mediator
}

func newTradingFixture(t *testing.T, runID string, items ...market.InventoryItem) *tradingFixture {
	t.Helper()

	f := &tradingFixture{
		clock:       shared.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
		source:      helpers.NewMockRecipeSource(),
		resolver:    helpers.NewMockSubstituteResolver(),
		marketplace: helpers.NewMockMarketplace(),
		inventory:   helpers.NewMockInventorySource(items...),
		journal:     helpers.NewMockOrderJournal(),
	}
	f.ledger = services.NewOrderLedger(f.marketplace, f.journal, f.clock, runID, true)

	registry := setup.NewHandlerRegistry(setup.Dependencies{
		Cache:       services.NewRecipeCache(f.source, 10*time.Minute, f.clock),
		Engine:      services.NewBuyDecisionEngine(f.resolver, f.marketplace, 2),
		Ledger:      f.ledger,
		Scanner:     services.NewInventoryScanner(f.marketplace, true),
		Inventory:   f.inventory,
		Marketplace: f.marketplace,
		Journal:     f.journal,
		Clock:       f.clock,
		APIBase:     testAPIBase,
	})

	m, err := registry.CreateConfiguredMediator()
	require.NoError(t, err)
	f.mediator = m
	return f
}

func TestRunTradeBot_EndToEndPlacesThenCancels(t *testing.T) {
	// Arrange
	f := newTradingFixture(t, "run-1")
	f.source.SetDocument(recipeID(t), helpers.MustDocument(recipeID(t), false,
		helpers.Requirement("MP9 | Sand Dashed", "Dust 2", 0.20, "20.00", 0.30),
	))
	f.resolver.SetSubstitutes("MP9 | Sand Dashed", "P90 | Sand Spray")
	f.marketplace.SetHighestBid("P90 | Sand Spray (Field-Tested)", dec("15.00"))

	// Act
	resp, err := f.mediator.Send(context.Background(), &commands.RunTradeBotCommand{
		RecipeLinks:   []string{shareLink},
		CheckInterval: time.Minute,
		RunID:         "run-1",
		MaxCycles:     2,
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunTradeBotResponse)
	assert.Equal(t, 1, result.Recipes)
	assert.Equal(t, 2, result.Cycles)
	assert.Equal(t, 1, result.Placed)
	assert.Equal(t, 1, result.Cancelled)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, 0, f.ledger.Len())

	calls := f.marketplace.PlaceCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "P90 | Sand Spray (Field-Tested)", calls[0].Name)
	assert.Equal(t, 1, calls[0].Quantity)
	assert.True(t, calls[0].UnitPrice.Equal(dec("15.00")))
	assert.Equal(t, []string{"order-1"}, f.marketplace.CancelCalls())

	entry, ok := f.journal.Get("order-1")
	require.True(t, ok)
	assert.Equal(t, market.JournalCancelled, entry.Status)
}

func TestRunTradeBot_PollsInventoryEachCycle(t *testing.T) {
	// Arrange
	worn := market.InventoryItem{AssetID: "a-1", Name: "MP9 | Sand Dashed", Quality: 0.35}
	f := newTradingFixture(t, "run-1", worn)
	f.source.SetDocument(recipeID(t), helpers.MustDocument(recipeID(t), false,
		helpers.Requirement("MP9 | Sand Dashed", "Dust 2", 0.20, "20.00", 0.30),
	))
	f.marketplace.SetLowestAsk("MP9 | Sand Dashed", dec("1.10"))

	// Act
	resp, err := f.mediator.Send(context.Background(), &commands.RunTradeBotCommand{
		RecipeLinks:   []string{shareLink},
		CheckInterval: 30 * time.Second,
		MaxCycles:     3,
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunTradeBotResponse)
	assert.Equal(t, 3, result.Cycles)
	assert.Equal(t, 3, f.inventory.Calls())
	assert.Equal(t, 3, result.Listed)
	assert.Equal(t, []time.Duration{30 * time.Second, 30 * time.Second}, f.clock.Waits(), "no pause after the last cycle")

	sells := f.marketplace.SellCalls()
	require.NotEmpty(t, sells)
	assert.Equal(t, "a-1", sells[0].AssetID)
	assert.True(t, sells[0].UnitPrice.Equal(dec("1.09")))
}

func TestRunTradeBot_RecipeFetchedOncePerExpiryWindow(t *testing.T) {
	// Arrange
	f := newTradingFixture(t, "run-1")
	f.source.SetDocument(recipeID(t), helpers.MustDocument(recipeID(t), false,
		helpers.Requirement("MP9 | Sand Dashed", "Dust 2", 0.20, "20.00", 0.30),
	))

	// Act: three one-minute cycles stay inside the ten-minute expiry
	_, err := f.mediator.Send(context.Background(), &commands.RunTradeBotCommand{
		RecipeLinks:   []string{shareLink},
		CheckInterval: time.Minute,
		MaxCycles:     3,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, f.source.Calls(recipeID(t)))
}

func TestRunTradeBot_RecoversOrphansFromEarlierRuns(t *testing.T) {
	// Arrange
	f := newTradingFixture(t, "run-2")
	f.source.SetError(recipeID(t), errors.New("recipe offline"))
	f.journal.Seed(&market.JournalEntry{
		OrderID:   "stale-7",
		RunID:     "run-1",
		ItemName:  "AK-47 | Safari Mesh (Field-Tested)",
		Quantity:  1,
		UnitPrice: dec("0.40"),
		Status:    market.JournalOpen,
	})

	// Act
	resp, err := f.mediator.Send(context.Background(), &commands.RunTradeBotCommand{
		RecipeLinks:    []string{shareLink},
		CheckInterval:  time.Minute,
		RecoverOrphans: true,
		RunID:          "run-2",
		MaxCycles:      1,
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunTradeBotResponse)
	assert.Equal(t, 0, result.Placed)
	assert.Contains(t, f.marketplace.CancelCalls(), "stale-7")

	entry, ok := f.journal.Get("stale-7")
	require.True(t, ok)
	assert.Equal(t, market.JournalCancelled, entry.Status)
}

func TestRunTradeBot_CancelledContextStillFlushesLedger(t *testing.T) {
	// Arrange
	f := newTradingFixture(t, "run-1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	resp, err := f.mediator.Send(ctx, &commands.RunTradeBotCommand{
		RecipeLinks:   []string{shareLink},
		CheckInterval: time.Minute,
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunTradeBotResponse)
	assert.Equal(t, 0, result.Cycles)
	assert.Empty(t, f.marketplace.PlaceCalls())

	// The ledger is closed once shutdown ran
	placed := f.ledger.Place(context.Background(), "Late (Field-Tested)", 1, dec("1.00"))
	assert.ErrorIs(t, placed.Err, market.ErrLedgerClosed)
}

func TestRunTradeBot_MalformedLinksAreSkipped(t *testing.T) {
	// Arrange
	m := helpers.NewMockMediator()
	m.SetResponse(&commands.PlaceBuyOrdersCommand{}, &commands.PlaceBuyOrdersResponse{})
	m.SetResponse(&commands.ScanInventoryCommand{}, &commands.ScanInventoryResponse{})
	m.SetResponse(&commands.CancelBuyOrdersCommand{}, &commands.CancelBuyOrdersResponse{})
	logger := helpers.NewCapturingLogger()
	ctx := common.WithLogger(context.Background(), logger)
	handler := commands.NewRunTradeBotHandler(m, shared.NewMockClock(time.Time{}), testAPIBase)

	// Act
	resp, err := handler.Handle(ctx, &commands.RunTradeBotCommand{
		RecipeLinks:   []string{"https://example.com/not-a-recipe", shareLink},
		CheckInterval: time.Minute,
		MaxCycles:     1,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, resp.(*commands.RunTradeBotResponse).Recipes)
	assert.True(t, logger.Contains("Skipping malformed recipe link"))

	calls := m.Calls()
	require.NotEmpty(t, calls)
	place, ok := calls[0].(*commands.PlaceBuyOrdersCommand)
	require.True(t, ok)
	assert.Equal(t, []string{recipeID(t)}, place.RecipeIDs)
}

func TestRunTradeBot_NoUsableLinksFailsBeforeTrading(t *testing.T) {
	// Arrange
	m := helpers.NewMockMediator()
	handler := commands.NewRunTradeBotHandler(m, shared.NewMockClock(time.Time{}), testAPIBase)

	// Act
	_, err := handler.Handle(context.Background(), &commands.RunTradeBotCommand{
		RecipeLinks: []string{"not a link"},
	})

	// Assert
	assert.ErrorIs(t, err, recipe.ErrMalformedLink)
	assert.Empty(t, m.Calls())
}

func TestRunTradeBot_CycleFailuresDoNotEndTheLoop(t *testing.T) {
	// Arrange
	m := helpers.NewMockMediator()
	m.SetResponse(&commands.PlaceBuyOrdersCommand{}, &commands.PlaceBuyOrdersResponse{})
	m.SetError(&commands.ScanInventoryCommand{}, errors.New("inventory is private"))
	m.SetResponse(&commands.CancelBuyOrdersCommand{}, &commands.CancelBuyOrdersResponse{Cancelled: 2})
	logger := helpers.NewCapturingLogger()
	ctx := common.WithLogger(context.Background(), logger)
	handler := commands.NewRunTradeBotHandler(m, shared.NewMockClock(time.Time{}), testAPIBase)

	// Act
	resp, err := handler.Handle(ctx, &commands.RunTradeBotCommand{
		RecipeLinks:   []string{shareLink},
		CheckInterval: time.Minute,
		MaxCycles:     3,
	})

	// Assert
	require.NoError(t, err)
	result := resp.(*commands.RunTradeBotResponse)
	assert.Equal(t, 3, result.Cycles)
	assert.Equal(t, 2, result.Cancelled)
	assert.Equal(t, 3, m.CountCalls(&commands.ScanInventoryCommand{}))
	assert.Equal(t, 1, m.CountCalls(&commands.CancelBuyOrdersCommand{}))
	assert.Equal(t, 3, logger.CountLevel(common.LevelError))
}

func TestRunTradeBot_RemainingOrdersLoggedAsError(t *testing.T) {
	// Arrange
	m := helpers.NewMockMediator()
	m.SetResponse(&commands.PlaceBuyOrdersCommand{}, &commands.PlaceBuyOrdersResponse{})
	m.SetResponse(&commands.ScanInventoryCommand{}, &commands.ScanInventoryResponse{})
	m.SetResponse(&commands.CancelBuyOrdersCommand{}, &commands.CancelBuyOrdersResponse{Cancelled: 1, Remaining: 1})
	logger := helpers.NewCapturingLogger()
	ctx := common.WithLogger(context.Background(), logger)
	handler := commands.NewRunTradeBotHandler(m, shared.NewMockClock(time.Time{}), testAPIBase)

	// Act
	resp, err := handler.Handle(ctx, &commands.RunTradeBotCommand{
		RecipeLinks:   []string{shareLink},
		CheckInterval: time.Minute,
		MaxCycles:     1,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, resp.(*commands.RunTradeBotResponse).Remaining)
	assert.Equal(t, 1, logger.CountLevel(common.LevelError))
	assert.True(t, logger.Contains("Buy order cancellation complete"))
}

func TestRunTradeBot_RejectsWrongRequestType(t *testing.T) {
	handler := commands.NewRunTradeBotHandler(helpers.NewMockMediator(), nil, testAPIBase)

	_, err := handler.Handle(context.Background(), &commands.CancelBuyOrdersCommand{})

	assert.EqualError(t, err, "invalid request type: expected *RunTradeBotCommand")
}
