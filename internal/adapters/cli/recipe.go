package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/queries"
)

// NewRecipeCommand creates the recipe command with subcommands
func NewRecipeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Inspect TradeUpSpy recipes",
		Long: `Inspect TradeUpSpy recipes without trading.

Examples:
  tradeup-bot recipe show https://www.tradeupspy.com/calculator/share/...`,
	}

	cmd.AddCommand(newRecipeShowCommand())

	return cmd
}

// newRecipeShowCommand creates the recipe show subcommand
func newRecipeShowCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "show <share-link>",
		Short: "Evaluate a recipe against the live order book",
		Long: `Fetch a recipe, resolve substitutes for each demand group and probe the order book.

Groups marked BUY would receive buy orders at the highest standing bid. Nothing is placed.

Example:
  tradeup-bot recipe show https://www.tradeupspy.com/calculator/share/...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipeShow(args[0], !noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors and emojis")

	return cmd
}

func runRecipeShow(link string, fancy bool) error {
	a, err := newApp(appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	ctx := a.withLogger(context.Background())
	result, err := a.mediator.Send(ctx, &queries.EvaluateRecipeQuery{Link: link})
	if err != nil {
		return fmt.Errorf("failed to evaluate recipe: %w", err)
	}

	evaluation := result.(*queries.EvaluateRecipeResponse)
	formatter := NewTreeFormatter(fancy, fancy)

	fmt.Fprint(os.Stdout, formatter.FormatTree(evaluation))
	fmt.Println()
	fmt.Println(formatter.FormatTreeSummary(evaluation))
	return nil
}
