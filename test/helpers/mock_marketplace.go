package helpers

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
)

// PlaceBuyCall records one PlaceBuyOrder invocation
type PlaceBuyCall struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// SellCall records one PlaceSellOrder invocation
type SellCall struct {
	AssetID   string
	UnitPrice decimal.Decimal
}

// MockMarketplace is a test double for the Marketplace and OrderBookProbe interfaces
type MockMarketplace struct {
	mu sync.Mutex

	// Order book data
	highestBids map[string]decimal.Decimal
	probeErrors map[string]error
	lowestAsks  map[string]decimal.Decimal

	// Placement behaviour
	nextOrderID   int
	placeOutcomes map[string]market.PlacementOutcome
	placeHook     func(name string)

	// Error injection
	cancelErrors map[string]error
	sellError    error

	// Call tracking
	placeCalls  []PlaceBuyCall
	cancelCalls []string
	sellCalls   []SellCall
	probeCalls  []string
}

// NewMockMarketplace creates a marketplace that accepts every order
func NewMockMarketplace() *MockMarketplace {
	return &MockMarketplace{
		highestBids:   make(map[string]decimal.Decimal),
		probeErrors:   make(map[string]error),
		lowestAsks:    make(map[string]decimal.Decimal),
		placeOutcomes: make(map[string]market.PlacementOutcome),
		cancelErrors:  make(map[string]error),
	}
}

func (m *MockMarketplace) SetHighestBid(name string, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.highestBids[name] = price
}

func (m *MockMarketplace) SetProbeError(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeErrors[name] = err
}

func (m *MockMarketplace) SetLowestAsk(name string, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lowestAsks[name] = price
}

// SetPlaceOutcome overrides the outcome returned for one item name
func (m *MockMarketplace) SetPlaceOutcome(name string, outcome market.PlacementOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placeOutcomes[name] = outcome
}

// SetPlaceHook runs fn inside PlaceBuyOrder before the outcome is returned
func (m *MockMarketplace) SetPlaceHook(fn func(name string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placeHook = fn
}

func (m *MockMarketplace) SetCancelError(orderID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelErrors[orderID] = err
}

func (m *MockMarketplace) ClearCancelError(orderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cancelErrors, orderID)
}

func (m *MockMarketplace) SetSellError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sellError = err
}

// HighestBuyOrder implements market.OrderBookProbe
func (m *MockMarketplace) HighestBuyOrder(ctx context.Context, name string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeCalls = append(m.probeCalls, name)

	if err, ok := m.probeErrors[name]; ok {
		return decimal.Zero, err
	}
	if price, ok := m.highestBids[name]; ok {
		return price, nil
	}
	return decimal.Zero, nil
}

func (m *MockMarketplace) PlaceBuyOrder(ctx context.Context, name string, unitPrice decimal.Decimal, quantity int) market.PlacementOutcome {
	m.mu.Lock()
	m.placeCalls = append(m.placeCalls, PlaceBuyCall{Name: name, UnitPrice: unitPrice, Quantity: quantity})
	hook := m.placeHook
	outcome, overridden := m.placeOutcomes[name]
	if !overridden {
		m.nextOrderID++
		outcome = market.Accepted(fmt.Sprintf("order-%d", m.nextOrderID))
	}
	m.mu.Unlock()

	if hook != nil {
		hook(name)
	}
	// The order exists on the marketplace, but a caller that gave up never learns its id
	if err := ctx.Err(); err != nil {
		return market.TransportFailure(err)
	}
	return outcome
}

func (m *MockMarketplace) CancelBuyOrder(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCalls = append(m.cancelCalls, orderID)
	return m.cancelErrors[orderID]
}

func (m *MockMarketplace) LowestAsk(ctx context.Context, name string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if price, ok := m.lowestAsks[name]; ok {
		return price, nil
	}
	return decimal.Zero, fmt.Errorf("%w: no listings for %s", market.ErrDataUnavailable, name)
}

func (m *MockMarketplace) PlaceSellOrder(ctx context.Context, assetID string, unitPrice decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sellCalls = append(m.sellCalls, SellCall{AssetID: assetID, UnitPrice: unitPrice})
	return m.sellError
}

func (m *MockMarketplace) PlaceCalls() []PlaceBuyCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PlaceBuyCall(nil), m.placeCalls...)
}

func (m *MockMarketplace) CancelCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.cancelCalls...)
}

func (m *MockMarketplace) SellCalls() []SellCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SellCall(nil), m.sellCalls...)
}

func (m *MockMarketplace) ProbeCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.probeCalls...)
}

// TotalCalls counts every call that would have reached the marketplace
func (m *MockMarketplace) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.placeCalls) + len(m.cancelCalls) + len(m.sellCalls)
}
