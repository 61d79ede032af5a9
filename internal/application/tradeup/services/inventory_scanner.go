package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/metrics"
	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/recipe"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

// ListingStatus tags the result of one listing attempt
type ListingStatus string

const (
	ListingListed    ListingStatus = "listed"
	ListingSimulated ListingStatus = "simulated"
	ListingSkipped   ListingStatus = "skipped"
	ListingFailed    ListingStatus = "failed"
)

// ListingResult describes one listing attempt
type ListingResult struct {
	Candidate market.ListingCandidate
	Price     decimal.Decimal
	Status    ListingStatus
	Err       error
}

// InventoryScanner flags held items whose float exceeds what a recipe tolerates and lists them.
// Listings undercut the current lowest ask by one cent.
type InventoryScanner struct {
	marketplace market.Marketplace
	liveTrading bool
}

// NewInventoryScanner creates an inventory scanner
func NewInventoryScanner(marketplace market.Marketplace, liveTrading bool) *InventoryScanner {
	return &InventoryScanner{
		marketplace: marketplace,
		liveTrading: liveTrading,
	}
}

// Scan returns a listing candidate for every item that violates some recipe's float tolerance.
// The first matching requirement wins; unavailable documents contribute no checks.
func (s *InventoryScanner) Scan(items []market.InventoryItem, docs []*recipe.Document) []market.ListingCandidate {
	var candidates []market.ListingCandidate

	for _, item := range items {
		if maxQuality, ok := firstViolation(item, docs); ok {
			candidates = append(candidates, market.ListingCandidate{
				Item:       item,
				MaxQuality: maxQuality,
			})
		}
	}

	return candidates
}

func firstViolation(item market.InventoryItem, docs []*recipe.Document) (float64, bool) {
	for _, doc := range docs {
		if doc == nil || !doc.Available() {
			continue
		}
		for _, req := range doc.Requirements() {
			if req.Name == item.Name && item.Quality > req.MaxQuality {
				return req.MaxQuality, true
			}
		}
	}
	return 0, false
}

// ListingPrice is the lowest ask minus one minimal currency unit
func ListingPrice(lowestAsk decimal.Decimal) decimal.Decimal {
	return lowestAsk.Sub(shared.MinimalUnit)
}

// List prices and submits a sell order for one candidate.
// When the lowest ask is unavailable, or undercutting it leaves nothing, the listing is skipped.
func (s *InventoryScanner) List(ctx context.Context, candidate market.ListingCandidate) ListingResult {
	logger := common.LoggerFromContext(ctx)
	item := candidate.Item
	result := ListingResult{Candidate: candidate}

	ask, err := s.marketplace.LowestAsk(ctx, item.PriceLookupName())
	if err != nil {
		logger.Log(common.LevelError, "Failed to calculate listing price", map[string]interface{}{
			"item":  item.Name,
			"error": err.Error(),
		})
		result.Status = ListingSkipped
		result.Err = err
		metrics.RecordListing(string(result.Status))
		return result
	}

	price := ListingPrice(ask)
	if !price.IsPositive() {
		logger.Log(common.LevelWarning, "Listing price is not positive, skipping", map[string]interface{}{
			"item":       item.Name,
			"lowest_ask": ask.StringFixed(2),
		})
		result.Status = ListingSkipped
		metrics.RecordListing(string(result.Status))
		return result
	}
	result.Price = price

	logger.Log(common.LevelInfo, "Attempting to list item on market", map[string]interface{}{
		"item":      item.Name,
		"asset_id":  item.AssetID,
		"float":     item.Quality,
		"max_float": candidate.MaxQuality,
		"price":     price.StringFixed(2),
	})

	if !s.liveTrading {
		logger.Log(common.LevelInfo, "SIMULATION: Would have listed item on market", map[string]interface{}{
			"item":  item.Name,
			"price": price.StringFixed(2),
		})
		result.Status = ListingSimulated
		metrics.RecordListing(string(result.Status))
		return result
	}

	if err := s.marketplace.PlaceSellOrder(ctx, item.AssetID, price); err != nil {
		logger.Log(common.LevelError, "Failed to list item on market", map[string]interface{}{
			"item":  item.Name,
			"error": err.Error(),
		})
		result.Status = ListingFailed
		result.Err = err
		metrics.RecordListing(string(result.Status))
		return result
	}

	logger.Log(common.LevelInfo, "Listed item on market", map[string]interface{}{
		"item":  item.Name,
		"price": price.StringFixed(2),
	})
	result.Status = ListingListed
	metrics.RecordListing(string(result.Status))
	return result
}

// ScanAndList scans the inventory against the documents and lists every candidate
func (s *InventoryScanner) ScanAndList(ctx context.Context, items []market.InventoryItem, docs []*recipe.Document) []ListingResult {
	candidates := s.Scan(items, docs)
	results := make([]ListingResult, 0, len(candidates))

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			break
		}
		results = append(results, s.List(ctx, candidate))
	}

	return results
}
