package commands

import (
	"fmt"

	"draw_notification_bot/internal/infra/logger"

	"github.com/spf13/cobra"
)

// runOnce is the root command: one draw check, outcome mapped to the exit code.
func runOnce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.Component("main")

	deps, err := buildDeps(ctx, cfg)
	if err != nil {
		return fmt.Errorf("could not initialise notifier: %w", err)
	}
	defer func() {
		if err := deps.close(); err != nil {
			log.WithError(err).Warn("Error closing state store")
		}
	}()

	res := deps.newNotifier(cfg).Run(ctx, forced())
	exitCode = res.Outcome.ExitCode()
	return nil
}
