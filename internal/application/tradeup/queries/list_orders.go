package queries

import (
	"context"
	"fmt"
	"strings"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
)

// ListOrdersQuery lists journaled buy orders
type ListOrdersQuery struct {
	Status          string // empty for all
	OutstandingOnly bool
	Limit           int
}

// ListOrdersResponse holds the journal entries, newest first
type ListOrdersResponse struct {
	Orders []*market.JournalEntry
}

// ListOrdersHandler handles the ListOrders query
type ListOrdersHandler struct {
	journal market.OrderJournal
}

// NewListOrdersHandler creates a new ListOrdersHandler
func NewListOrdersHandler(journal market.OrderJournal) *ListOrdersHandler {
	return &ListOrdersHandler{journal: journal}
}

// Handle executes the ListOrders query
func (h *ListOrdersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListOrdersQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListOrdersQuery")
	}

	if query.OutstandingOnly {
		orders, err := h.journal.FindOutstanding(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("failed to list outstanding orders: %w", err)
		}
		if query.Limit > 0 && len(orders) > query.Limit {
			orders = orders[:query.Limit]
		}
		return &ListOrdersResponse{Orders: orders}, nil
	}

	var status *market.JournalStatus
	if query.Status != "" {
		parsed, err := market.ParseJournalStatus(strings.ToUpper(query.Status))
		if err != nil {
			return nil, err
		}
		status = &parsed
	}

	orders, err := h.journal.List(ctx, status, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &ListOrdersResponse{Orders: orders}, nil
}
