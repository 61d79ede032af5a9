package helpers

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
)

// MockOrderJournal is an in-memory market.OrderJournal
type MockOrderJournal struct {
	mu      sync.Mutex
	entries map[string]*market.JournalEntry
	err     error
}

func NewMockOrderJournal() *MockOrderJournal {
	return &MockOrderJournal{entries: make(map[string]*market.JournalEntry)}
}

// SetError makes every write fail with err
func (m *MockOrderJournal) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Seed inserts an entry directly, bypassing the write path
func (m *MockOrderJournal) Seed(entry *market.JournalEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *entry
	m.entries[entry.OrderID] = &copied
}

func (m *MockOrderJournal) RecordPlaced(ctx context.Context, runID string, order *market.ActiveOrder, placedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.entries[order.ID()] = &market.JournalEntry{
		OrderID:   order.ID(),
		RunID:     runID,
		ItemName:  order.ItemName(),
		Quantity:  order.Quantity(),
		UnitPrice: order.UnitPrice(),
		Status:    market.JournalOpen,
		PlacedAt:  placedAt,
	}
	return nil
}

func (m *MockOrderJournal) RecordCancelled(ctx context.Context, orderID string, cancelledAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	entry, ok := m.entries[orderID]
	if !ok {
		return errors.New("order not journaled")
	}
	entry.Status = market.JournalCancelled
	entry.CancelledAt = &cancelledAt
	entry.LastError = ""
	return nil
}

func (m *MockOrderJournal) RecordCancelFailed(ctx context.Context, orderID string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	entry, ok := m.entries[orderID]
	if !ok {
		return errors.New("order not journaled")
	}
	entry.Status = market.JournalCancelFailed
	entry.LastError = reason
	return nil
}

func (m *MockOrderJournal) FindOutstanding(ctx context.Context, excludeRunID string) ([]*market.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*market.JournalEntry
	for _, entry := range m.sorted() {
		if entry.Status.IsOutstanding() && entry.RunID != excludeRunID {
			copied := *entry
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockOrderJournal) List(ctx context.Context, status *market.JournalStatus, limit int) ([]*market.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*market.JournalEntry
	for _, entry := range m.sorted() {
		if status != nil && entry.Status != *status {
			continue
		}
		copied := *entry
		result = append(result, &copied)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// Get returns the entry for orderID
func (m *MockOrderJournal) Get(orderID string) (*market.JournalEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[orderID]
	if !ok {
		return nil, false
	}
	copied := *entry
	return &copied, true
}

func (m *MockOrderJournal) sorted() []*market.JournalEntry {
	entries := make([]*market.JournalEntry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].OrderID < entries[j].OrderID })
	return entries
}
