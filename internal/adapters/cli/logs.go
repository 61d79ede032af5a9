package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/queries"
)

// NewLogsCommand creates the logs command
func NewLogsCommand() *cobra.Command {
	var (
		runID string
		level string
		since time.Duration
		limit int
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show persisted bot logs",
		Long: `Show log entries persisted by earlier runs, newest first.

Entries are only persisted when logging.persist is true.

Examples:
  tradeup-bot logs --limit 100
  tradeup-bot logs --level error --since 24h
  tradeup-bot logs --run run-20240301-123005-a3f8e2b1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(runID, level, since, limit)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Filter by run id")
	cmd.Flags().StringVar(&level, "level", "", "Filter by level (debug, info, warning, error)")
	cmd.Flags().DurationVar(&since, "since", 0, "Only entries newer than this (e.g. 1h)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of entries to return")

	return cmd
}

func runLogs(runID, level string, since time.Duration, limit int) error {
	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	query := &queries.ListLogsQuery{
		RunID: runID,
		Level: level,
		Limit: limit,
	}
	if since > 0 {
		cutoff := time.Now().Add(-since)
		query.Since = &cutoff
	}

	result, err := a.mediator.Send(context.Background(), query)
	if err != nil {
		return fmt.Errorf("failed to list logs: %w", err)
	}

	entries := result.(*queries.ListLogsResponse).Entries
	if len(entries) == 0 {
		fmt.Println("No log entries found")
		return nil
	}

	for _, entry := range entries {
		line := fmt.Sprintf("%s %-7s [%s] %s",
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.Level,
			entry.RunID,
			entry.Message,
		)
		if len(entry.Metadata) > 0 {
			if data, err := json.Marshal(entry.Metadata); err == nil {
				line += " " + string(data)
			}
		}
		fmt.Println(line)
	}
	return nil
}
