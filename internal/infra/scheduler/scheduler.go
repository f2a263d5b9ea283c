package scheduler

import (
	"context"
	"fmt"
	"time"

	"draw_notification_bot/internal/app" // For Notifier interface
	"draw_notification_bot/internal/infra/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// NotifierFactory builds a fresh notifier for each scheduled run, so no
// in-memory state carries over between runs.
type NotifierFactory func() (app.Notifier, error)

type DrawCheckScheduler struct {
	cronEngine *cron.Cron
	newRunner  NotifierFactory
	log        *logrus.Entry
	cronSpec   string
	runTimeout time.Duration
}

func NewDrawCheckScheduler(
	newRunner NotifierFactory,
	log *logrus.Entry,
	cronSpec string, // e.g., "*/30 * * * *" (every 30 minutes)
	runTimeout time.Duration, // Upper bound for one whole run
) *DrawCheckScheduler {
	cronLogger := logger.NewCronLogger(log)
	return &DrawCheckScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local), // Use server's local time for cron
			cron.WithLogger(cronLogger),
			// Overlapping runs would race on the stored marker.
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		newRunner:  newRunner,
		log:        log,
		cronSpec:   cronSpec,
		runTimeout: runTimeout,
	}
}

// Start registers the draw check job and starts the cron engine.
func (s *DrawCheckScheduler) Start() error {
	s.log.WithField("cron_spec", s.cronSpec).Info("Starting draw check scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.RunOnce); err != nil {
		return fmt.Errorf("could not add draw check cron job: %w", err)
	}

	s.cronEngine.Start()
	s.log.Info("Draw check scheduler started.")
	return nil
}

// RunOnce performs a single scheduled check with a fresh notifier.
// Scheduled checks are never forced.
func (s *DrawCheckScheduler) RunOnce() {
	s.log.Debug("Cron job triggered for draw check.")

	notifier, err := s.newRunner()
	if err != nil {
		s.log.WithError(err).Error("Could not build notifier for scheduled run")
		return
	}

	ctx := context.Background()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	res := notifier.Run(ctx, false)
	if !res.Succeeded() {
		s.log.WithField("outcome", res.Outcome.String()).Warn("Scheduled draw check did not succeed; it will be retried on the next tick")
	}
}

func (s *DrawCheckScheduler) Stop() {
	s.log.Info("Stopping draw check scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.log.Info("Draw check scheduler gracefully stopped.")
}
