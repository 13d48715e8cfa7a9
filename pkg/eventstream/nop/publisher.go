package nop

import (
	"context"

	"github.com/BillDuke13/mnemosyne/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishIdentified validates input and otherwise does nothing.
func (p *Publisher) PublishIdentified(_ context.Context, event *eventstream.IdentifiedEvent) error {
	if event == nil {
		return eventstream.ErrNilIdentifiedEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}

var _ eventstream.Publisher = (*Publisher)(nil)
