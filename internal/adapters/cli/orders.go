package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/commands"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/queries"
	"github.com/andrescamacho/tradeup-bot/internal/domain/market"
)

// NewOrdersCommand creates the orders command with subcommands
func NewOrdersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and repair the buy order journal",
		Long: `Inspect and repair the buy order journal.

Every accepted buy order is journaled with the run that placed it. Orders that are still
OPEN or CANCEL_FAILED after their run ended are orphans: they may still be live on the
marketplace.

Examples:
  tradeup-bot orders list
  tradeup-bot orders list --status cancel_failed
  tradeup-bot orders list --outstanding
  tradeup-bot orders recover --dry-run`,
	}

	cmd.AddCommand(newOrdersListCommand())
	cmd.AddCommand(newOrdersRecoverCommand())

	return cmd
}

// newOrdersListCommand creates the orders list subcommand
func newOrdersListCommand() *cobra.Command {
	var (
		status      string
		outstanding bool
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled buy orders",
		Long: `List journaled buy orders, newest first.

Statuses:
  OPEN           - Accepted by the marketplace, not yet cancelled
  CANCELLED      - Cancelled
  CANCEL_FAILED  - Cancellation was attempted and failed

Examples:
  tradeup-bot orders list --limit 20
  tradeup-bot orders list --status open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersList(status, outstanding, limit)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().BoolVar(&outstanding, "outstanding", false, "Only orders that may still be live")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of orders to return")

	return cmd
}

// newOrdersRecoverCommand creates the orders recover subcommand
func newOrdersRecoverCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Cancel orders left open by earlier runs",
		Long: `Cancel every journaled buy order that is still OPEN or CANCEL_FAILED.

Do not run this while a bot is running: its live orders would be cancelled too.

Examples:
  tradeup-bot orders recover --dry-run
  tradeup-bot orders recover`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersRecover(dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only list the orders that would be cancelled")

	return cmd
}

func runOrdersList(status string, outstanding bool, limit int) error {
	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.mediator.Send(a.withLogger(context.Background()), &queries.ListOrdersQuery{
		Status:          status,
		OutstandingOnly: outstanding,
		Limit:           limit,
	})
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}

	displayOrderList(result.(*queries.ListOrdersResponse).Orders)
	return nil
}

func runOrdersRecover(dryRun bool) error {
	a, err := newApp(appOptions{persistLogs: true})
	if err != nil {
		return err
	}
	defer a.close()

	if !dryRun && !a.cfg.Bot.EnableOrders {
		fmt.Println("Live trading is disabled (bot.enable_orders=false); showing what would be cancelled.")
		dryRun = true
	}

	result, err := a.mediator.Send(a.withLogger(context.Background()), &commands.RecoverOrphanedOrdersCommand{
		DryRun: dryRun,
	})
	if err != nil {
		return fmt.Errorf("failed to recover orders: %w", err)
	}

	response := result.(*commands.RecoverOrphanedOrdersResponse)
	displayOrderList(response.Orders)

	if dryRun {
		fmt.Printf("\n%d orders would be cancelled\n", response.Found)
		return nil
	}
	fmt.Printf("\nCancelled %d of %d orders (%d failed)\n", response.Cancelled, response.Found, response.Failed)
	if response.Failed > 0 {
		return fmt.Errorf("%d orders could not be cancelled", response.Failed)
	}
	return nil
}

func displayOrderList(orders []*market.JournalEntry) {
	if len(orders) == 0 {
		fmt.Println("No orders found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER ID\tRUN\tITEM\tQTY\tPRICE\tSTATUS\tPLACED\tERROR")
	for _, order := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			order.OrderID,
			order.RunID,
			order.ItemName,
			order.Quantity,
			order.UnitPrice.StringFixed(2),
			order.Status,
			order.PlacedAt.Local().Format("2006-01-02 15:04:05"),
			order.LastError,
		)
	}
	w.Flush()
}
