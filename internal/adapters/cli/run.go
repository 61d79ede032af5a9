package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/tradeup-bot/internal/application/common"
	"github.com/andrescamacho/tradeup-bot/internal/application/tradeup/commands"
	"github.com/andrescamacho/tradeup-bot/internal/infrastructure/config"
	"github.com/andrescamacho/tradeup-bot/internal/infrastructure/pidfile"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	var (
		force      bool
		maxCycles  int
		noRecovery bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the trading loop until interrupted",
		Long: `Run the trading loop.

The bot places buy orders once for every configured recipe, then scans the inventory
every bot.check_interval and lists items whose float exceeds what a recipe tolerates.
On SIGINT or SIGTERM every buy order placed by this run is cancelled before exit.

Buy orders journaled by an earlier run that never reached its shutdown are cancelled
at startup unless --no-recovery is given.

Examples:
  tradeup-bot run
  tradeup-bot run --force
  tradeup-bot run --max-cycles 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), force, maxCycles, !noRecovery)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Stop any running bot and start a new one")
	cmd.Flags().IntVar(&maxCycles, "max-cycles", 0, "Stop after this many inventory cycles (0 = run until interrupted)")
	cmd.Flags().BoolVar(&noRecovery, "no-recovery", false, "Skip cancelling orders left open by earlier runs")

	return cmd
}

func runBot(parent context.Context, force bool, maxCycles int, recoverOrphans bool) error {
	if parent == nil {
		parent = context.Background()
	}

	a, err := newApp(appOptions{serveMetrics: true, persistLogs: true})
	if err != nil {
		return err
	}
	defer a.close()

	if err := config.ValidateForRun(a.cfg); err != nil {
		return err
	}

	// Acquire PID file lock to prevent two bots trading on one account
	pf := pidfile.New(a.cfg.Daemon.PIDFile)
	if err := pf.Acquire(a.runID); err != nil {
		if !force || !errors.Is(err, pidfile.ErrAlreadyRunning) {
			return fmt.Errorf("failed to acquire PID file lock: %w\nUse --force to stop the running bot", err)
		}
		fmt.Println("Force mode enabled - stopping the running bot...")
		if killErr := pf.KillExisting(a.cfg.Daemon.ShutdownTimeout); killErr != nil {
			return fmt.Errorf("failed to stop running bot: %w", killErr)
		}
		if err := pf.Acquire(a.runID); err != nil {
			return fmt.Errorf("failed to acquire PID file lock after stopping running bot: %w", err)
		}
	}
	defer func() {
		if err := pf.Release(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to release PID file: %v\n", err)
		}
	}()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = a.withLogger(ctx)

	if a.metricsServer != nil {
		errCh := a.metricsServer.Start()
		go func() {
			if err, ok := <-errCh; ok && err != nil {
				a.logger.Log(common.LevelError, "Metrics server stopped", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
	}

	if !a.cfg.Bot.EnableOrders {
		a.logger.Log(common.LevelWarning, "Live trading disabled, marketplace actions are simulated", nil)
	}

	resp, err := a.mediator.Send(ctx, &commands.RunTradeBotCommand{
		RecipeLinks:     a.cfg.Bot.RecipeLinks,
		CheckInterval:   a.cfg.Bot.CheckInterval,
		ShutdownTimeout: a.cfg.Daemon.ShutdownTimeout,
		RecoverOrphans:  recoverOrphans && a.cfg.Bot.EnableOrders,
		RunID:           a.runID,
		MaxCycles:       maxCycles,
	})
	if err != nil {
		return err
	}

	result := resp.(*commands.RunTradeBotResponse)
	fmt.Printf("\nRun %s finished\n", a.runID)
	fmt.Printf("  Recipes:   %d\n", result.Recipes)
	fmt.Printf("  Cycles:    %d\n", result.Cycles)
	fmt.Printf("  Placed:    %d (simulated %d)\n", result.Placed, result.Simulated)
	fmt.Printf("  Listed:    %d\n", result.Listed)
	fmt.Printf("  Cancelled: %d\n", result.Cancelled)

	if result.Remaining > 0 {
		return fmt.Errorf("%d buy orders could not be cancelled; run 'tradeup-bot orders recover' to retry", result.Remaining)
	}
	return nil
}
