// internal/app/notification_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"draw_notification_bot/internal/domain/draw"
	"draw_notification_bot/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// ErrDataUnavailable is returned when every draw source failed or produced no usable record.
var ErrDataUnavailable = fmt.Errorf("draw data unavailable")

// Notifier runs one new-draw check. The scheduler depends on this interface.
type Notifier interface {
	Run(ctx context.Context, force bool) RunResult
}

// Options configures a DrawUpdateNotifier.
type Options struct {
	Recipient       string        // Passed to the transport as-is (email address, chat ID)
	DispatchTimeout time.Duration // Zero means no extra deadline beyond ctx
}

// DrawUpdateNotifier decides, once per run, whether a draw newer than the last
// notified one exists, notifies once, and only then advances the stored marker.
// A notifier holds no state between runs; durability lives entirely in the StateStore.
type DrawUpdateNotifier struct {
	sources   []draw.Source // Primary first, then fallbacks in order
	store     notification.StateStore
	transport notification.Transport
	logger    *logrus.Entry
	opts      Options
}

func NewDrawUpdateNotifier(
	sources []draw.Source,
	store notification.StateStore,
	transport notification.Transport,
	logger *logrus.Entry,
	opts Options,
) *DrawUpdateNotifier {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &DrawUpdateNotifier{
		sources:   sources,
		store:     store,
		transport: transport,
		logger:    logger,
		opts:      opts,
	}
}

// LoadLatestRecords returns deduplicated records sorted newest first, taken from
// the first source that yields at least one usable record.
func (n *DrawUpdateNotifier) LoadLatestRecords(ctx context.Context) ([]draw.Record, error) {
	for _, src := range n.sources {
		srcLogger := n.logger.WithField("source", src.Name())

		entries, err := src.FetchEntries(ctx)
		if err != nil {
			srcLogger.WithError(err).Warn("Draw source failed, trying next source")
			continue
		}

		records, dropped := draw.ParseEntries(entries)
		for _, dropErr := range dropped {
			srcLogger.WithError(dropErr).Warn("Dropping malformed draw entry")
		}

		records = draw.Normalize(records)
		if len(records) == 0 {
			srcLogger.WithField("raw_entries", len(entries)).Warn("Draw source yielded no usable records, trying next source")
			continue
		}

		srcLogger.WithFields(logrus.Fields{
			"records":     len(records),
			"latest_draw": records[0].DrawNumber,
			"latest_date": records[0].DateString(),
		}).Info("Draw records loaded")
		return records, nil
	}

	return nil, fmt.Errorf("%w: %d source(s) tried", ErrDataUnavailable, len(n.sources))
}

// LoadState reads the persisted marker. A missing or corrupt marker is treated
// as "never notified". Any other read failure is returned, since assuming the
// default then could notify the same draw twice.
func (n *DrawUpdateNotifier) LoadState(ctx context.Context) (notification.State, error) {
	state, err := n.store.Read(ctx)
	if err != nil {
		if errors.Is(err, notification.ErrCorruptState) {
			n.logger.WithError(err).Warn("Notification state is corrupt, assuming nothing was notified yet")
			return notification.DefaultState(), nil
		}
		return notification.State{}, fmt.Errorf("could not read notification state: %w", err)
	}
	if state == nil || state.LastNotifiedDate.IsZero() {
		n.logger.Info("No notification state stored yet, assuming nothing was notified yet")
		return notification.DefaultState(), nil
	}
	return *state, nil
}

// IsUpdateDue reports whether latest is strictly newer than the stored marker,
// or whether a send was forced. Strict comparison keeps reruns idempotent.
func IsUpdateDue(latest draw.Record, state notification.State, force bool) bool {
	if force {
		return true
	}
	return draw.DateOf(latest.DrawDate).After(draw.DateOf(state.LastNotifiedDate))
}

// Run executes one load -> decide -> notify -> record cycle.
func (n *DrawUpdateNotifier) Run(ctx context.Context, force bool) RunResult {
	// 1. Load data
	records, err := n.LoadLatestRecords(ctx)
	if err != nil {
		return n.finish(RunResult{Outcome: OutcomeDataUnavailable, Err: err})
	}
	latest := records[0]

	// 2. Decide
	state, err := n.LoadState(ctx)
	if err != nil {
		return n.finish(RunResult{Outcome: OutcomeStateReadFailed, Latest: &latest, Err: err})
	}
	if !IsUpdateDue(latest, state, force) {
		return n.finish(RunResult{Outcome: OutcomeNotNeeded, Latest: &latest})
	}
	if force {
		n.logger.WithField("last_notified", state.LastNotifiedDate.Format(draw.DateLayout)).Info("Forced notification requested")
	}

	// 3. Notify
	msg := ComposeNotification(latest)
	result := Dispatch(ctx, n.transport, msg, n.opts.Recipient, n.opts.DispatchTimeout)
	if !result.Sent {
		return n.finish(RunResult{Outcome: OutcomeDispatchFailed, Latest: &latest, Reason: result.Reason})
	}

	// 4. Record, only after a confirmed send. The marker never moves backward.
	if !latest.DrawDate.After(state.LastNotifiedDate) {
		n.logger.WithField("last_notified", state.LastNotifiedDate.Format(draw.DateLayout)).
			Debug("Notified draw is not newer than the stored marker, leaving state unchanged")
		return n.finish(RunResult{Outcome: OutcomeNotified, Latest: &latest})
	}
	if err := n.store.Write(ctx, notification.State{LastNotifiedDate: draw.DateOf(latest.DrawDate)}); err != nil {
		return n.finish(RunResult{Outcome: OutcomeStateWriteFailed, Latest: &latest, Err: err})
	}
	return n.finish(RunResult{Outcome: OutcomeNotified, Latest: &latest})
}

// finish logs the one-line outcome of a run.
func (n *DrawUpdateNotifier) finish(res RunResult) RunResult {
	entry := n.logger.WithField("outcome", res.Outcome.String())
	if res.Latest != nil {
		entry = entry.WithFields(logrus.Fields{
			"draw_number": res.Latest.DrawNumber,
			"draw_date":   res.Latest.DateString(),
		})
	}
	if res.Reason != "" {
		entry = entry.WithField("reason", res.Reason)
	}
	if res.Err != nil {
		entry = entry.WithError(res.Err)
	}

	switch res.Outcome {
	case OutcomeNotified:
		entry.Info("New draw notification sent")
	case OutcomeNotNeeded:
		entry.Info("No new draw since last notification")
	case OutcomeStateWriteFailed:
		entry.Error("Notification was sent but the state could not be saved; the next run may notify again")
	default:
		entry.Error("Draw check failed")
	}
	return res
}
