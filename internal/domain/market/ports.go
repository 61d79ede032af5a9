package market

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderBookProbe reads the current order book for one market hash name.
// A failure is reported as an error and must never be conflated with a zero price.
type OrderBookProbe interface {
	HighestBuyOrder(ctx context.Context, marketHashName string) (decimal.Decimal, error)
}

// Marketplace is the trading capability of the external market
type Marketplace interface {
	// PlaceBuyOrder submits a bid and maps the raw response onto a tagged outcome
	PlaceBuyOrder(ctx context.Context, marketHashName string, unitPrice decimal.Decimal, quantity int) PlacementOutcome

	// CancelBuyOrder withdraws a previously placed bid
	CancelBuyOrder(ctx context.Context, orderID string) error

	// LowestAsk returns the cheapest current listing price for an item
	LowestAsk(ctx context.Context, marketHashName string) (decimal.Decimal, error)

	// PlaceSellOrder lists a held asset at the given price
	PlaceSellOrder(ctx context.Context, assetID string, unitPrice decimal.Decimal) error
}

// InventorySource supplies the current held items
type InventorySource interface {
	CurrentInventory(ctx context.Context) ([]InventoryItem, error)
}

// OrderJournal durably records placements and cancellations so orders left behind by a
// crashed run can be found and cancelled later. Journal failures never block trading.
type OrderJournal interface {
	RecordPlaced(ctx context.Context, runID string, order *ActiveOrder, placedAt time.Time) error
	RecordCancelled(ctx context.Context, orderID string, cancelledAt time.Time) error
	RecordCancelFailed(ctx context.Context, orderID string, reason string) error
	FindOutstanding(ctx context.Context, excludeRunID string) ([]*JournalEntry, error)
	List(ctx context.Context, status *JournalStatus, limit int) ([]*JournalEntry, error)
}
