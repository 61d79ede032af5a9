package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/services"
)

// CancelBuyOrdersCommand flushes the order ledger. After it runs the ledger refuses new placements.
type CancelBuyOrdersCommand struct{}

// CancelBuyOrdersResponse reports the flush result
type CancelBuyOrdersResponse struct {
	Cancelled int
	Remaining int
}

// CancelBuyOrdersHandler handles the CancelBuyOrders command
type CancelBuyOrdersHandler struct {
	ledger *services.OrderLedger
}

// NewCancelBuyOrdersHandler creates a new CancelBuyOrdersHandler
func NewCancelBuyOrdersHandler(ledger *services.OrderLedger) *CancelBuyOrdersHandler {
	return &CancelBuyOrdersHandler{ledger: ledger}
}

// Handle executes the CancelBuyOrders command
func (h *CancelBuyOrdersHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*CancelBuyOrdersCommand); !ok {
		return nil, fmt.Errorf("invalid request type: expected *CancelBuyOrdersCommand")
	}

	cancelled := h.ledger.CancelAll(ctx)
	return &CancelBuyOrdersResponse{
		Cancelled: cancelled,
		Remaining: h.ledger.Len(),
	}, nil
}
