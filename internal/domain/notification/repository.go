// internal/domain/notification/repository.go
package notification

import (
	"context"
	"errors"
)

// ErrCorruptState marks a stored marker that exists but cannot be understood.
// Stores wrap it so callers can tell it apart from I/O failures.
var ErrCorruptState = errors.New("corrupt notification state")

// StateStore persists the single "last notified" marker under one well-known key.
type StateStore interface {
	// Read returns the stored state, or (nil, nil) when nothing has been stored yet.
	// A corrupt record is reported as an error wrapping ErrCorruptState.
	Read(ctx context.Context) (*State, error)
	// Write replaces the stored state. Implementations must not leave a partially written record.
	Write(ctx context.Context, state State) error
}
