package nop

import (
	"context"

	"github.com/papercomputeco/verso/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishNotebook validates input and otherwise does nothing.
func (p *Publisher) PublishNotebook(_ context.Context, event *eventstream.NotebookEvent) error {
	if event == nil {
		return eventstream.ErrNilNotebookEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
