// internal/domain/notification/message.go
package notification

import "context"

// Message is a composed notification with two renderings of the same content.
type Message struct {
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Transport delivers a Message to a recipient (email address, chat ID, ...).
// A nil error means the transport confirmed the dispatch.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message, recipient string) error
}

// DispatchResult is the outcome of handing a Message to a Transport.
// Failures are values: Sent is false and Reason explains why.
type DispatchResult struct {
	Sent   bool
	Reason string
}

// Sent reports a confirmed dispatch.
func Sent() DispatchResult {
	return DispatchResult{Sent: true}
}

// Failed reports a dispatch that did not go out.
func Failed(reason string) DispatchResult {
	return DispatchResult{Reason: reason}
}
