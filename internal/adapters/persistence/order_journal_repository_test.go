package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/persistence"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/test/helpers"
)

func mustOrder(t *testing.T, id, name string, qty int, price string) *market.ActiveOrder {
	t.Helper()
	order, err := market.NewActiveOrder(id, name, qty, decimal.RequireFromString(price))
	require.NoError(t, err)
	return order
}

func TestOrderJournal_RecordPlacedAndList(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOrderJournalRepository(db)
	ctx := context.Background()
	placedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Act
	err := repo.RecordPlaced(ctx, "run-1", mustOrder(t, "111", "AK-47 | Safari Mesh (Field-Tested)", 3, "0.07"), placedAt)
	require.NoError(t, err)
	entries, err := repo.List(ctx, nil, 10)

	// Assert
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "111", entry.OrderID)
	assert.Equal(t, "run-1", entry.RunID)
	assert.Equal(t, 3, entry.Quantity)
	assert.True(t, entry.UnitPrice.Equal(decimal.RequireFromString("0.07")))
	assert.Equal(t, market.JournalOpen, entry.Status)
	assert.Nil(t, entry.CancelledAt)
}

func TestOrderJournal_StatusTransitions(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOrderJournalRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordPlaced(ctx, "run-1", mustOrder(t, "1", "a", 1, "1.00"), now))
	require.NoError(t, repo.RecordPlaced(ctx, "run-1", mustOrder(t, "2", "b", 1, "2.00"), now.Add(time.Second)))

	// Act
	require.NoError(t, repo.RecordCancelled(ctx, "1", now.Add(time.Minute)))
	require.NoError(t, repo.RecordCancelFailed(ctx, "2", "502 bad gateway"))

	// Assert
	cancelled := market.JournalCancelled
	entries, err := repo.List(ctx, &cancelled, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].OrderID)
	require.NotNil(t, entries[0].CancelledAt)

	failed := market.JournalCancelFailed
	entries, err = repo.List(ctx, &failed, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "502 bad gateway", entries[0].LastError)
}

func TestOrderJournal_UnknownOrder(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOrderJournalRepository(db)

	err := repo.RecordCancelled(context.Background(), "missing", time.Now())

	assert.ErrorIs(t, err, persistence.ErrJournalEntryNotFound)
}

func TestOrderJournal_FindOutstandingExcludesCurrentRun(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormOrderJournalRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.RecordPlaced(ctx, "old-run", mustOrder(t, "1", "a", 1, "1.00"), now))
	require.NoError(t, repo.RecordPlaced(ctx, "old-run", mustOrder(t, "2", "b", 1, "1.00"), now.Add(time.Second)))
	require.NoError(t, repo.RecordPlaced(ctx, "old-run", mustOrder(t, "3", "c", 1, "1.00"), now.Add(2*time.Second)))
	require.NoError(t, repo.RecordPlaced(ctx, "this-run", mustOrder(t, "4", "d", 1, "1.00"), now.Add(3*time.Second)))
	require.NoError(t, repo.RecordCancelled(ctx, "2", now))
	require.NoError(t, repo.RecordCancelFailed(ctx, "3", "timeout"))

	// Act
	outstanding, err := repo.FindOutstanding(ctx, "this-run")

	// Assert
	require.NoError(t, err)
	require.Len(t, outstanding, 2)
	assert.Equal(t, "1", outstanding[0].OrderID)
	assert.Equal(t, "3", outstanding[1].OrderID)
}
