package eventstream

import "context"

// Publisher publishes notebook events to an event stream backend.
type Publisher interface {
	PublishNotebook(ctx context.Context, event *NotebookEvent) error
	Close() error
}
