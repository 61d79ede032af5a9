package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/tradeup-bot/internal/adapters/metrics"
	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
)

// placementTimeout bounds a placement once it has been handed to the marketplace
const placementTimeout = 90 * time.Second

// OrderLedger tracks every buy order placed during the process lifetime.
//
// Invariant: every entry corresponds to exactly one outstanding marketplace order. Entries are
// only added after an accepted placement and only removed after a successful cancellation, so
// CancelAll is the single path that clears the ledger.
type OrderLedger struct {
	marketplace market.Marketplace
	journal     market.OrderJournal
	clock       shared.Clock
	runID       string
	liveTrading bool

	mu       sync.Mutex
	orders   map[string]*market.ActiveOrder
	closed   bool
	inFlight sync.WaitGroup
}

// NewOrderLedger creates a ledger. journal may be nil; if clock is nil, uses RealClock.
func NewOrderLedger(
	marketplace market.Marketplace,
	journal market.OrderJournal,
	clock shared.Clock,
	runID string,
	liveTrading bool,
) *OrderLedger {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &OrderLedger{
		marketplace: marketplace,
		journal:     journal,
		clock:       clock,
		runID:       runID,
		liveTrading: liveTrading,
		orders:      make(map[string]*market.ActiveOrder),
	}
}

// LiveTrading reports whether placements reach the marketplace
func (l *OrderLedger) LiveTrading() bool {
	return l.liveTrading
}

// PlaceIntent places one buy order per target of the intent.
// Each target is attempted independently; one failure does not prevent the others.
func (l *OrderLedger) PlaceIntent(ctx context.Context, intent market.BuyIntent) []market.PlacementResult {
	if err := intent.Validate(); err != nil {
		return []market.PlacementResult{{Err: err}}
	}

	results := make([]market.PlacementResult, 0, len(intent.Targets))
	for _, target := range intent.Targets {
		results = append(results, l.Place(ctx, target, intent.Quantity, intent.UnitPrice))
	}
	return results
}

// Place submits one buy order and records it when the marketplace accepts it.
//
// In simulation mode nothing is submitted and nothing is recorded. Placements requested after
// CancelAll has started are refused with ErrLedgerClosed without contacting the marketplace.
// Once submitted, a placement ignores cancellation of ctx and runs to completion under
// placementTimeout, so an order the marketplace accepted is always recorded and journaled
// before CancelAll takes its snapshot.
func (l *OrderLedger) Place(ctx context.Context, itemName string, quantity int, unitPrice decimal.Decimal) market.PlacementResult {
	logger := common.LoggerFromContext(ctx)
	result := market.PlacementResult{ItemName: itemName}

	logger.Log(common.LevelInfo, "Attempting to place buy order", map[string]interface{}{
		"item":     itemName,
		"quantity": quantity,
		"price":    unitPrice.StringFixed(2),
	})

	if !l.liveTrading {
		logger.Log(common.LevelInfo, "SIMULATION: Would have placed buy order", map[string]interface{}{
			"item":     itemName,
			"quantity": quantity,
			"price":    unitPrice.StringFixed(2),
		})
		metrics.RecordBuyOrder("simulated")
		result.Simulated = true
		return result
	}

	if !l.beginPlacement() {
		result.Err = fmt.Errorf("%w: refusing to place %s", market.ErrLedgerClosed, itemName)
		logger.Log(common.LevelWarning, "Ledger is shutting down, buy order not placed", map[string]interface{}{
			"item": itemName,
		})
		return result
	}
	defer l.inFlight.Done()

	placeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), placementTimeout)
	defer cancel()

	outcome := l.marketplace.PlaceBuyOrder(placeCtx, itemName, unitPrice, quantity)
	if !outcome.IsAccepted() {
		result.Err = outcome.Err()
		logger.Log(common.LevelError, "Failed to place buy order", map[string]interface{}{
			"item":    itemName,
			"outcome": outcome.Status().String(),
			"error":   result.Err.Error(),
		})
		metrics.RecordBuyOrder(outcome.Status().String())
		return result
	}

	order, err := market.NewActiveOrder(outcome.OrderID(), itemName, quantity, unitPrice)
	if err != nil {
		result.Err = err
		return result
	}

	l.mu.Lock()
	l.orders[order.ID()] = order
	count := len(l.orders)
	l.mu.Unlock()

	metrics.RecordBuyOrder(outcome.Status().String())
	metrics.SetActiveOrders(count)

	l.journalPlaced(placeCtx, order)

	logger.Log(common.LevelInfo, "Placed buy order", map[string]interface{}{
		"order_id": order.ID(),
		"item":     itemName,
		"quantity": quantity,
		"price":    unitPrice.StringFixed(2),
	})

	result.Order = order
	return result
}

// beginPlacement registers an in-flight placement unless the ledger is closed
func (l *OrderLedger) beginPlacement() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.inFlight.Add(1)
	return true
}

// CancelAll cancels every recorded order and returns how many were cancelled.
//
// Placements still in flight are waited for first so none is left behind. Every entry is
// attempted regardless of earlier failures; failed entries stay in the ledger.
func (l *OrderLedger) CancelAll(ctx context.Context) int {
	logger := common.LoggerFromContext(ctx)

	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.inFlight.Wait()

	snapshot := l.Snapshot()
	if len(snapshot) == 0 {
		return 0
	}

	cancelled := 0
	for _, order := range snapshot {
		if err := l.marketplace.CancelBuyOrder(ctx, order.ID()); err != nil {
			logger.Log(common.LevelError, "Failed to cancel buy order", map[string]interface{}{
				"order_id": order.ID(),
				"item":     order.ItemName(),
				"error":    err.Error(),
			})
			metrics.RecordCancellation(false)
			l.journalCancelFailed(ctx, order, err)
			continue
		}

		l.mu.Lock()
		delete(l.orders, order.ID())
		count := len(l.orders)
		l.mu.Unlock()

		cancelled++
		metrics.RecordCancellation(true)
		metrics.SetActiveOrders(count)
		l.journalCancelled(ctx, order)

		logger.Log(common.LevelInfo, "Cancelled buy order", map[string]interface{}{
			"order_id": order.ID(),
			"item":     order.ItemName(),
		})
	}

	logger.Log(common.LevelInfo, "Buy order cancellation finished", map[string]interface{}{
		"cancelled": cancelled,
		"remaining": l.Len(),
	})

	return cancelled
}

// Snapshot returns the recorded orders sorted by id
func (l *OrderLedger) Snapshot() []*market.ActiveOrder {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders := make([]*market.ActiveOrder, 0, len(l.orders))
	for _, order := range l.orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID() < orders[j].ID() })
	return orders
}

// Len returns the number of recorded orders
func (l *OrderLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.orders)
}

// Journal writes are best effort: a failure is logged and trading continues.

func (l *OrderLedger) journalPlaced(ctx context.Context, order *market.ActiveOrder) {
	if l.journal == nil {
		return
	}
	if err := l.journal.RecordPlaced(ctx, l.runID, order, l.clock.Now()); err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelWarning, "Failed to journal buy order", map[string]interface{}{
			"order_id": order.ID(),
			"error":    err.Error(),
		})
	}
}

func (l *OrderLedger) journalCancelled(ctx context.Context, order *market.ActiveOrder) {
	if l.journal == nil {
		return
	}
	if err := l.journal.RecordCancelled(ctx, order.ID(), l.clock.Now()); err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelWarning, "Failed to journal cancellation", map[string]interface{}{
			"order_id": order.ID(),
			"error":    err.Error(),
		})
	}
}

func (l *OrderLedger) journalCancelFailed(ctx context.Context, order *market.ActiveOrder, cause error) {
	if l.journal == nil {
		return
	}
	if err := l.journal.RecordCancelFailed(ctx, order.ID(), cause.Error()); err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelWarning, "Failed to journal cancellation failure", map[string]interface{}{
			"order_id": order.ID(),
			"error":    err.Error(),
		})
	}
}
