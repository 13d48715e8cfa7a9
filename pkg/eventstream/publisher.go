// Package eventstream defines the identification events emitted by mnemosyne
// and the publisher contract for sending them to a stream backend.
package eventstream

import "context"

// Publisher publishes identification events to an event stream backend.
type Publisher interface {
	PublishIdentified(ctx context.Context, event *IdentifiedEvent) error
	Close() error
}
