package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
)

// ErrJournalEntryNotFound is returned when an order id has never been journaled
var ErrJournalEntryNotFound = errors.New("journal entry not found")

// GormOrderJournalRepository implements market.OrderJournal using GORM
type GormOrderJournalRepository struct {
	db *gorm.DB
}

// NewGormOrderJournalRepository creates a new GORM order journal
func NewGormOrderJournalRepository(db *gorm.DB) *GormOrderJournalRepository {
	return &GormOrderJournalRepository{db: db}
}

// RecordPlaced journals a newly accepted buy order as OPEN
func (r *GormOrderJournalRepository) RecordPlaced(ctx context.Context, runID string, order *market.ActiveOrder, placedAt time.Time) error {
	model := &OrderJournalModel{
		OrderID:   order.ID(),
		RunID:     runID,
		ItemName:  order.ItemName(),
		Quantity:  order.Quantity(),
		UnitPrice: order.UnitPrice(),
		Status:    string(market.JournalOpen),
		PlacedAt:  placedAt,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to journal order %s: %w", order.ID(), err)
	}
	return nil
}

// RecordCancelled marks an order as cancelled on the marketplace
func (r *GormOrderJournalRepository) RecordCancelled(ctx context.Context, orderID string, cancelledAt time.Time) error {
	return r.updateStatus(ctx, orderID, map[string]interface{}{
		"status":       string(market.JournalCancelled),
		"cancelled_at": cancelledAt,
		"last_error":   "",
	})
}

// RecordCancelFailed keeps the order outstanding and remembers why cancellation failed
func (r *GormOrderJournalRepository) RecordCancelFailed(ctx context.Context, orderID string, reason string) error {
	return r.updateStatus(ctx, orderID, map[string]interface{}{
		"status":     string(market.JournalCancelFailed),
		"last_error": reason,
	})
}

func (r *GormOrderJournalRepository) updateStatus(ctx context.Context, orderID string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&OrderJournalModel{}).
		Where("order_id = ?", orderID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update journal entry %s: %w", orderID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrJournalEntryNotFound, orderID)
	}
	return nil
}

// FindOutstanding returns orders that may still exist on the marketplace, excluding one run
func (r *GormOrderJournalRepository) FindOutstanding(ctx context.Context, excludeRunID string) ([]*market.JournalEntry, error) {
	var models []OrderJournalModel

	query := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(market.JournalOpen), string(market.JournalCancelFailed)})
	if excludeRunID != "" {
		query = query.Where("run_id <> ?", excludeRunID)
	}

	if err := query.Order("placed_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find outstanding orders: %w", err)
	}

	return r.modelsToEntries(models)
}

// List returns journal entries newest first, optionally filtered by status
func (r *GormOrderJournalRepository) List(ctx context.Context, status *market.JournalStatus, limit int) ([]*market.JournalEntry, error) {
	var models []OrderJournalModel

	query := r.db.WithContext(ctx)
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Order("placed_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	return r.modelsToEntries(models)
}

func (r *GormOrderJournalRepository) modelsToEntries(models []OrderJournalModel) ([]*market.JournalEntry, error) {
	entries := make([]*market.JournalEntry, 0, len(models))
	for _, model := range models {
		status, err := market.ParseJournalStatus(model.Status)
		if err != nil {
			return nil, fmt.Errorf("corrupt journal entry %s: %w", model.OrderID, err)
		}

		entries = append(entries, &market.JournalEntry{
			OrderID:     model.OrderID,
			RunID:       model.RunID,
			ItemName:    model.ItemName,
			Quantity:    model.Quantity,
			UnitPrice:   model.UnitPrice,
			Status:      status,
			PlacedAt:    model.PlacedAt,
			CancelledAt: model.CancelledAt,
			LastError:   model.LastError,
		})
	}
	return entries, nil
}
