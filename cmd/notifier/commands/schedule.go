package commands

import (
	"fmt"
	"time"

	"draw_notification_bot/internal/app"
	"draw_notification_bot/internal/infra/logger"
	"draw_notification_bot/internal/infra/scheduler"

	"github.com/spf13/cobra"
)

var runImmediately bool

func init() {
	scheduleCmd.Flags().BoolVar(&runImmediately, "now", false, "run one check immediately before waiting for the schedule")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Runs the draw check periodically on CRON_SPEC until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.Component("scheduler")

		deps, err := buildDeps(ctx, cfg)
		if err != nil {
			return fmt.Errorf("could not initialise notifier: %w", err)
		}
		defer func() {
			if err := deps.close(); err != nil {
				log.WithError(err).Warn("Error closing state store")
			}
		}()

		// One fetch and one dispatch, plus slack for the state write.
		runTimeout := cfg.Source.FetchTimeout*time.Duration(len(deps.sources)) + cfg.DispatchTimeout + 30*time.Second

		sched := scheduler.NewDrawCheckScheduler(
			func() (app.Notifier, error) { return deps.newNotifier(cfg), nil },
			log,
			cfg.CronSpec,
			runTimeout,
		)
		if runImmediately {
			// Runs before the engine starts so it cannot overlap a tick.
			// Only this check honours --force-notify; ticks never force.
			deps.newNotifier(cfg).Run(ctx, forced())
		}
		if err := sched.Start(); err != nil {
			return err
		}

		<-ctx.Done() // Block until a signal is received
		log.Info("Shutting down...")
		sched.Stop()
		return nil
	},
}
