package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/tradeup-bot/internal/domain/shared"
	"github.com/andrescamacho/tradeup-bot/internal/infrastructure/config"
)

// Version is stamped at build time with -ldflags "-X .../internal/adapters/cli.Version=v1.2.3"
var Version = "dev"

// Exit codes
const (
	exitFailure     = 1
	exitConfigError = 2
)

const (
	groupTrading = "trading"
	groupInspect = "inspect"
)

var (
	configPath string
	verbose    bool
)

// NewRootCommand assembles the tradeup-bot command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "tradeup-bot",
		Short:   "Buy trade-up inputs below recipe cost on the Steam Community Market",
		Version: Version,
		Long: `tradeup-bot follows TradeUpSpy recipes. For every recipe input it bids on the
Steam Community Market whenever the best standing bid is under the recipe price, and it
lists held items whose float is too worn for any recipe.

Nothing is bought or listed unless bot.enable_orders is true; until then each
marketplace action is only logged as a simulation.`,
		Example: `  tradeup-bot run
  tradeup-bot run --force
  tradeup-bot recipe show <share-link>
  tradeup-bot orders list --outstanding
  tradeup-bot orders recover
  tradeup-bot logs --level error --limit 50
  tradeup-bot config show`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", os.Getenv(config.EnvPrefix+"_CONFIG"),
		"config file (searched in ., ./configs and /etc/tradeup-bot when empty)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	root.AddGroup(
		&cobra.Group{ID: groupTrading, Title: "Trading:"},
		&cobra.Group{ID: groupInspect, Title: "Inspection:"},
	)
	addToGroup(root, groupTrading, NewRunCommand(), NewOrdersCommand())
	addToGroup(root, groupInspect, NewRecipeCommand(), NewLogsCommand(), NewConfigCommand())

	return root
}

func addToGroup(root *cobra.Command, group string, cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		cmd.GroupID = group
		root.AddCommand(cmd)
	}
}

// Execute runs the CLI and exits non-zero on failure. Configuration problems exit with 2.
func Execute() {
	err := NewRootCommand().Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if errors.Is(err, shared.ErrConfigurationInvalid) {
		return exitConfigError
	}
	return exitFailure
}
