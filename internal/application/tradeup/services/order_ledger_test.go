package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/test/helpers"
)

func newLiveLedger(mp *helpers.MockMarketplace, journal market.OrderJournal) *services.OrderLedger {
	return services.NewOrderLedger(mp, journal, nil, "run-1", true)
}

func TestOrderLedger_PlaceRecordsAcceptedOrder(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	ledger := newLiveLedger(mp, nil)

	// Act
	result := ledger.Place(context.Background(), "AK-47 | Safari Mesh (Field-Tested)", 2, dec("0.42"))

	// Assert
	require.NoError(t, result.Err)
	require.NotNil(t, result.Order)
	assert.Equal(t, "order-1", result.Order.ID())
	assert.Equal(t, 1, ledger.Len())

	calls := mp.PlaceCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].Quantity)
	assert.True(t, calls[0].UnitPrice.Equal(dec("0.42")))
}

func TestOrderLedger_RejectedOrderIsNotRecorded(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	mp.SetPlaceOutcome("Bad Item (Field-Tested)", market.Rejected("You already have an active buy order"))
	ledger := newLiveLedger(mp, nil)

	// Act
	result := ledger.Place(context.Background(), "Bad Item (Field-Tested)", 1, dec("1.00"))

	// Assert
	assert.ErrorIs(t, result.Err, market.ErrMarketplaceRejected)
	assert.Nil(t, result.Order)
	assert.Equal(t, 0, ledger.Len())
}

func TestOrderLedger_TransportFailureIsNotRecorded(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	mp.SetPlaceOutcome("Flaky (Minimal Wear)", market.TransportFailure(errors.New("unexpected response shape")))
	mp.SetPlaceOutcome("No Id (Minimal Wear)", market.Accepted(""))
	ledger := newLiveLedger(mp, nil)

	// Act
	flaky := ledger.Place(context.Background(), "Flaky (Minimal Wear)", 1, dec("1.00"))
	noID := ledger.Place(context.Background(), "No Id (Minimal Wear)", 1, dec("1.00"))

	// Assert
	assert.ErrorIs(t, flaky.Err, market.ErrMarketplaceTransport)
	assert.ErrorIs(t, noID.Err, market.ErrMarketplaceTransport)
	assert.Equal(t, 0, ledger.Len())
}

func TestOrderLedger_CancelAllIsIdempotent(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	ledger := newLiveLedger(mp, nil)
	ctx := context.Background()
	ledger.Place(ctx, "One (Field-Tested)", 1, dec("1.00"))
	ledger.Place(ctx, "Two (Field-Tested)", 1, dec("2.00"))

	// Act
	first := ledger.CancelAll(ctx)
	second := ledger.CancelAll(ctx)

	// Assert
	assert.Equal(t, 2, first)
	assert.Equal(t, 0, second)
	assert.Equal(t, 0, ledger.Len())
	assert.ElementsMatch(t, []string{"order-1", "order-2"}, mp.CancelCalls())
}

func TestOrderLedger_CancelFailureKeepsOnlyThatEntry(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	ledger := newLiveLedger(mp, nil)
	ctx := context.Background()
	ledger.Place(ctx, "One (Field-Tested)", 1, dec("1.00"))
	ledger.Place(ctx, "Two (Field-Tested)", 1, dec("2.00"))
	ledger.Place(ctx, "Three (Field-Tested)", 1, dec("3.00"))
	mp.SetCancelError("order-1", errors.New("502 bad gateway"))

	// Act
	cancelled := ledger.CancelAll(ctx)

	// Assert
	assert.Equal(t, 2, cancelled)
	remaining := ledger.Snapshot()
	require.Len(t, remaining, 1)
	assert.Equal(t, "order-1", remaining[0].ID())
	assert.Len(t, mp.CancelCalls(), 3)
}

func TestOrderLedger_RetryCancelsPreviouslyFailedEntry(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	ledger := newLiveLedger(mp, nil)
	ctx := context.Background()
	ledger.Place(ctx, "One (Field-Tested)", 1, dec("1.00"))
	mp.SetCancelError("order-1", errors.New("timeout"))
	require.Equal(t, 0, ledger.CancelAll(ctx))
	mp.ClearCancelError("order-1")

	// Act
	cancelled := ledger.CancelAll(ctx)

	// Assert
	assert.Equal(t, 1, cancelled)
	assert.Equal(t, 0, ledger.Len())
}

func TestOrderLedger_CancelAllOnEmptyLedger(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	ledger := newLiveLedger(mp, nil)

	// Act
	cancelled := ledger.CancelAll(context.Background())

	// Assert
	assert.Equal(t, 0, cancelled)
	assert.Empty(t, mp.CancelCalls())
}

func TestOrderLedger_SimulationNeverContactsMarketplace(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	ledger := services.NewOrderLedger(mp, nil, nil, "run-1", false)
	ctx := context.Background()

	// Act
	var results []market.PlacementResult
	for i := 0; i < 5; i++ {
		results = append(results, ledger.Place(ctx, "Any (Factory New)", 1, dec("1.00")))
	}
	cancelled := ledger.CancelAll(ctx)

	// Assert
	for _, r := range results {
		assert.True(t, r.Simulated)
		assert.NoError(t, r.Err)
		assert.Nil(t, r.Order)
	}
	assert.Equal(t, 0, ledger.Len())
	assert.Equal(t, 0, cancelled)
	assert.Equal(t, 0, mp.TotalCalls())
}

func TestOrderLedger_PlaceAfterShutdownIsRefused(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	ledger := newLiveLedger(mp, nil)
	ctx := context.Background()
	ledger.CancelAll(ctx)

	// Act
	result := ledger.Place(ctx, "Late (Field-Tested)", 1, dec("1.00"))

	// Assert
	assert.ErrorIs(t, result.Err, market.ErrLedgerClosed)
	assert.Empty(t, mp.PlaceCalls())
	assert.Equal(t, 0, ledger.Len())
}

func TestOrderLedger_InFlightPlacementIsCancelledAtShutdown(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	ledger := newLiveLedger(mp, nil)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	mp.SetPlaceHook(func(string) {
		close(entered)
		<-release
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ledger.Place(ctx, "Slow (Field-Tested)", 1, dec("1.00"))
	}()
	<-entered

	// Act
	done := make(chan int, 1)
	go func() { done <- ledger.CancelAll(ctx) }()

	select {
	case <-done:
		t.Fatal("CancelAll returned before the in-flight placement completed")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	wg.Wait()

	// Assert
	assert.Equal(t, 1, <-done)
	assert.Equal(t, 0, ledger.Len())
	assert.Equal(t, []string{"order-1"}, mp.CancelCalls())
}

func TestOrderLedger_PlacementSurvivesRunCancellation(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	journal := helpers.NewMockOrderJournal()
	ledger := newLiveLedger(mp, journal)
	runCtx, stop := context.WithCancel(context.Background())

	entered := make(chan struct{})
	mp.SetPlaceHook(func(string) {
		close(entered)
		// the marketplace answers only after the run was told to stop
		<-runCtx.Done()
		time.Sleep(20 * time.Millisecond)
	})

	placed := make(chan market.PlacementResult, 1)
	go func() { placed <- ledger.Place(runCtx, "Slow (Field-Tested)", 1, dec("1.00")) }()
	<-entered

	// Act
	stop()
	cancelled := ledger.CancelAll(context.Background())
	result := <-placed

	// Assert
	require.NoError(t, result.Err)
	require.NotNil(t, result.Order)
	assert.Equal(t, "order-1", result.Order.ID())
	assert.Equal(t, 1, cancelled)
	assert.Equal(t, []string{"order-1"}, mp.CancelCalls())
	assert.Equal(t, 0, ledger.Len())

	entry, ok := journal.Get("order-1")
	require.True(t, ok)
	assert.Equal(t, market.JournalCancelled, entry.Status)
}

func TestOrderLedger_PlaceIntentPlacesEveryTarget(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	mp.SetPlaceOutcome("B (Well-Worn)", market.Rejected("insufficient funds"))
	ledger := newLiveLedger(mp, nil)
	intent := market.BuyIntent{
		Targets:   []string{"A (Well-Worn)", "B (Well-Worn)", "C (Well-Worn)"},
		Quantity:  3,
		UnitPrice: dec("0.75"),
	}

	// Act
	results := ledger.PlaceIntent(context.Background(), intent)

	// Assert
	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 2, ledger.Len())
	for _, call := range mp.PlaceCalls() {
		assert.Equal(t, 3, call.Quantity)
	}
}

func TestOrderLedger_JournalTracksLifecycle(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	journal := helpers.NewMockOrderJournal()
	ledger := newLiveLedger(mp, journal)
	ctx := context.Background()
	ledger.Place(ctx, "One (Field-Tested)", 1, dec("1.00"))
	ledger.Place(ctx, "Two (Field-Tested)", 1, dec("2.00"))
	mp.SetCancelError("order-2", errors.New("session expired"))

	// Act
	ledger.CancelAll(ctx)

	// Assert
	first, ok := journal.Get("order-1")
	require.True(t, ok)
	assert.Equal(t, market.JournalCancelled, first.Status)
	assert.Equal(t, "run-1", first.RunID)
	assert.NotNil(t, first.CancelledAt)

	second, ok := journal.Get("order-2")
	require.True(t, ok)
	assert.Equal(t, market.JournalCancelFailed, second.Status)
	assert.Equal(t, "session expired", second.LastError)
}

func TestOrderLedger_JournalFailureDoesNotBlockTrading(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	journal := helpers.NewMockOrderJournal()
	journal.SetError(errors.New("database is locked"))
	ledger := newLiveLedger(mp, journal)
	ctx := context.Background()

	// Act
	result := ledger.Place(ctx, "One (Field-Tested)", 1, dec("1.00"))
	cancelled := ledger.CancelAll(ctx)

	// Assert
	assert.NoError(t, result.Err)
	assert.Equal(t, 1, cancelled)
}
