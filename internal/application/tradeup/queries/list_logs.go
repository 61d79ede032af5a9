package queries

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
)

// ListLogsQuery lists persisted bot log entries
type ListLogsQuery struct {
	RunID string
	Level string
	Since *time.Time
	Limit int
}

// ListLogsResponse holds log entries, newest first
type ListLogsResponse struct {
	Entries []common.BotLogEntry
}

// ListLogsHandler handles the ListLogs query
type ListLogsHandler struct {
	repo common.BotLogRepository
}

// NewListLogsHandler creates a new ListLogsHandler
func NewListLogsHandler(repo common.BotLogRepository) *ListLogsHandler {
	return &ListLogsHandler{repo: repo}
}

// Handle executes the ListLogs query
func (h *ListLogsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListLogsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListLogsQuery")
	}

	entries, err := h.repo.GetLogs(ctx, common.BotLogFilter{
		RunID: query.RunID,
		Level: strings.ToUpper(query.Level),
		Since: query.Since,
		Limit: query.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	return &ListLogsResponse{Entries: entries}, nil
}
