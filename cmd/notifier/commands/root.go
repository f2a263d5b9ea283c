package commands

import (
	"context"
	"fmt"
	"os"

	"draw_notification_bot/internal/infra/config"
	"draw_notification_bot/internal/infra/logger"

	"github.com/spf13/cobra"
)

var (
	cfg         *config.AppConfig
	forceNotify bool
	exitCode    int
)

var rootCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Checks for a new Express Entry draw and sends one alert per new draw.",
	Long: `Loads the latest draws (live feed, then local fallbacks), compares the newest
draw with the stored "last notified" marker and, if it is newer, sends a
notification and advances the marker. Exit status is 0 when a notification was
sent or none was needed, 1 when data, dispatch or reading the marker failed, and 2 when the
notification went out but the marker could not be saved.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("could not load application configuration: %w", err)
		}
		cfg = loaded
		logger.Init(cfg)
		return nil
	},
	RunE: runOnce,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&forceNotify, "force-notify", false,
		"send the notification even if the latest draw was already notified (also FORCE_NOTIFY=true)")
}

// ExecuteContext runs the CLI and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

func forced() bool {
	return forceNotify || cfg.ForceNotify
}
