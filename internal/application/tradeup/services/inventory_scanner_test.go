package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
	"github.com/andrescamacho/tradeup-bot/test/helpers"
)

func scannerDocs() []*recipe.Document {
	return []*recipe.Document{
		helpers.MustDocument("r1", false,
			helpers.Requirement("FAMAS | Colony", "Italy", 0.10, "0.30", 0.12),
		),
		helpers.MustDocument("r2", false,
			helpers.Requirement("FAMAS | Colony", "Italy", 0.30, "0.20", 0.40),
			helpers.Requirement("UMP-45 | Gunsmoke", "Italy", 0.20, "0.50", 0.25),
		),
	}
}

func TestInventoryScanner_FlagsItemAboveTolerance(t *testing.T) {
	// Arrange
	scanner := services.NewInventoryScanner(helpers.NewMockMarketplace(), false)
	items := []market.InventoryItem{
		{AssetID: "1", Name: "FAMAS | Colony", Quality: 0.13},
		{AssetID: "2", Name: "UMP-45 | Gunsmoke", Quality: 0.25},
		{AssetID: "3", Name: "Unrelated", Quality: 0.99},
	}

	// Act
	candidates := scanner.Scan(items, scannerDocs())

	// Assert
	require.Len(t, candidates, 1)
	assert.Equal(t, "1", candidates[0].Item.AssetID)
	assert.Equal(t, 0.12, candidates[0].MaxQuality)
}

func TestInventoryScanner_ItemListedOnce(t *testing.T) {
	// Arrange
	scanner := services.NewInventoryScanner(helpers.NewMockMarketplace(), false)
	items := []market.InventoryItem{{AssetID: "1", Name: "FAMAS | Colony", Quality: 0.50}}

	// Act
	candidates := scanner.Scan(items, scannerDocs())

	// Assert
	require.Len(t, candidates, 1)
	assert.Equal(t, 0.12, candidates[0].MaxQuality)
}

func TestInventoryScanner_SkipsUnavailableDocuments(t *testing.T) {
	// Arrange
	scanner := services.NewInventoryScanner(helpers.NewMockMarketplace(), false)
	items := []market.InventoryItem{{AssetID: "1", Name: "FAMAS | Colony", Quality: 0.50}}
	docs := []*recipe.Document{recipe.UnavailableDocument("r1"), nil}

	// Act
	candidates := scanner.Scan(items, docs)

	// Assert
	assert.Empty(t, candidates)
}

func TestInventoryScanner_ListUndercutsLowestAsk(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	mp.SetLowestAsk("FAMAS | Colony", dec("0.35"))
	scanner := services.NewInventoryScanner(mp, true)
	candidate := market.ListingCandidate{Item: market.InventoryItem{AssetID: "42", Name: "FAMAS | Colony", Quality: 0.5}}

	// Act
	result := scanner.List(context.Background(), candidate)

	// Assert
	assert.Equal(t, services.ListingListed, result.Status)
	assert.True(t, result.Price.Equal(dec("0.34")))
	sells := mp.SellCalls()
	require.Len(t, sells, 1)
	assert.Equal(t, "42", sells[0].AssetID)
	assert.True(t, sells[0].UnitPrice.Equal(dec("0.34")))
}

func TestInventoryScanner_MissingAskSkipsListing(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	scanner := services.NewInventoryScanner(mp, true)
	candidate := market.ListingCandidate{Item: market.InventoryItem{AssetID: "42", Name: "FAMAS | Colony"}}

	// Act
	result := scanner.List(context.Background(), candidate)

	// Assert
	assert.Equal(t, services.ListingSkipped, result.Status)
	assert.ErrorIs(t, result.Err, market.ErrDataUnavailable)
	assert.Empty(t, mp.SellCalls())
}

func TestInventoryScanner_MinimalAskSkipsListing(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	mp.SetLowestAsk("FAMAS | Colony", dec("0.01"))
	scanner := services.NewInventoryScanner(mp, true)
	candidate := market.ListingCandidate{Item: market.InventoryItem{AssetID: "42", Name: "FAMAS | Colony"}}

	// Act
	result := scanner.List(context.Background(), candidate)

	// Assert
	assert.Equal(t, services.ListingSkipped, result.Status)
	assert.Empty(t, mp.SellCalls())
}

func TestInventoryScanner_SimulationDoesNotSell(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	mp.SetLowestAsk("FAMAS | Colony", dec("1.00"))
	scanner := services.NewInventoryScanner(mp, false)
	candidate := market.ListingCandidate{Item: market.InventoryItem{AssetID: "42", Name: "FAMAS | Colony"}}

	// Act
	result := scanner.List(context.Background(), candidate)

	// Assert
	assert.Equal(t, services.ListingSimulated, result.Status)
	assert.True(t, result.Price.Equal(dec("0.99")))
	assert.Empty(t, mp.SellCalls())
}

func TestInventoryScanner_SellFailureIsReported(t *testing.T) {
	// Arrange
	mp := helpers.NewMockMarketplace()
	mp.SetLowestAsk("FAMAS | Colony", dec("1.00"))
	mp.SetSellError(errors.New("item not tradable"))
	scanner := services.NewInventoryScanner(mp, true)
	items := []market.InventoryItem{{AssetID: "1", Name: "FAMAS | Colony", Quality: 0.5}}

	// Act
	results := scanner.ScanAndList(context.Background(), items, scannerDocs())

	// Assert
	require.Len(t, results, 1)
	assert.Equal(t, services.ListingFailed, results[0].Status)
	assert.Error(t, results[0].Err)
}
