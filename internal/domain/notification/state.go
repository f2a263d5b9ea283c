// internal/domain/notification/state.go
package notification

import "time"

// DefaultLastNotifiedDate is assumed when no marker has ever been stored,
// so the first run always notifies.
var DefaultLastNotifiedDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// State is the persisted marker: the draw date of the most recent draw
// a notification was successfully sent for.
type State struct {
	LastNotifiedDate time.Time // Calendar date, midnight UTC
}

// DefaultState returns the state used on first run or when the stored marker is unreadable.
func DefaultState() State {
	return State{LastNotifiedDate: DefaultLastNotifiedDate}
}
