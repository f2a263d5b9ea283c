// internal/app/outcome.go
package app

import "draw_notification_bot/internal/domain/draw"

// Outcome is the terminal state of a single run.
type Outcome int

const (
	OutcomeNotified Outcome = iota
	OutcomeNotNeeded
	OutcomeDispatchFailed
	OutcomeDataUnavailable
	OutcomeStateWriteFailed // Sent, but the marker was not persisted
	OutcomeStateReadFailed  // Marker store unreachable; nothing was sent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotified:
		return "notified"
	case OutcomeNotNeeded:
		return "not_needed"
	case OutcomeDispatchFailed:
		return "dispatch_failed"
	case OutcomeDataUnavailable:
		return "data_unavailable"
	case OutcomeStateWriteFailed:
		return "state_write_failed"
	case OutcomeStateReadFailed:
		return "state_read_failed"
	default:
		return "unknown"
	}
}

// ExitCode maps an outcome to the process exit status.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeNotified, OutcomeNotNeeded:
		return 0
	case OutcomeStateWriteFailed:
		return 2
	default:
		return 1
	}
}

// RunResult describes what a run did.
type RunResult struct {
	Outcome Outcome
	Latest  *draw.Record // Nil when no data could be loaded
	Reason  string       // Dispatch failure reason
	Err     error
}

// Succeeded reports whether the run ended in Notified or NotNeeded.
func (r RunResult) Succeeded() bool {
	return r.Outcome.ExitCode() == 0
}
