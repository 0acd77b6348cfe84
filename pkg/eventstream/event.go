package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/verso/pkg/notebook"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeItemAdded is emitted after an evidence item is appended.
	EventTypeItemAdded = "verso.notebook.item_added"

	// EventTypeItemRemoved is emitted after an evidence item is removed.
	EventTypeItemRemoved = "verso.notebook.item_removed"
)

// NotebookEvent is a transport-neutral payload describing one notebook change.
type NotebookEvent struct {
	SchemaVersion int                   `json:"schema_version"`
	EventType     string                `json:"event_type"`
	EventID       string                `json:"event_id"`
	EmittedAt     time.Time             `json:"emitted_at"`
	Item          notebook.EvidenceItem `json:"item"`

	// NotebookSize is the item count after the change.
	NotebookSize int `json:"notebook_size"`

	// Persisted is false when the durable write failed and the change exists
	// only in memory.
	Persisted bool `json:"persisted"`
}

// NewNotebookEvent builds an event with a fresh id and the current time.
func NewNotebookEvent(eventType string, item notebook.EvidenceItem, size int, persisted bool) *NotebookEvent {
	return &NotebookEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Item:          item,
		NotebookSize:  size,
		Persisted:     persisted,
	}
}
