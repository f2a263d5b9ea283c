// internal/app/dispatch.go
package app

import (
	"context"
	"fmt"
	"time"

	"draw_notification_bot/internal/domain/notification"
)

// Dispatch hands msg to transport and converts every failure, including a
// timeout or a panicking transport, into a Failed result.
func Dispatch(
	ctx context.Context,
	transport notification.Transport,
	msg notification.Message,
	recipient string,
	timeout time.Duration,
) (result notification.DispatchResult) {
	if transport == nil {
		return notification.Failed("no notification transport configured")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			result = notification.Failed(fmt.Sprintf("%s transport panicked: %v", transport.Name(), r))
		}
	}()

	if err := transport.Send(ctx, msg, recipient); err != nil {
		return notification.Failed(fmt.Sprintf("%s: %v", transport.Name(), err))
	}
	return notification.Sent()
}
