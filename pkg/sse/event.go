// Package sse reads Server-Sent Events from a streamed model reply.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// DoneData is the sentinel data payload OpenAI-style streams end with.
const DoneData = "[DONE]"

// Event represents a single parsed SSE event, delimited by a blank line.
type Event struct {
	// Type is the value of the "event:" field. Empty means "message".
	Type string

	// Data is every "data:" line of the event joined with "\n".
	Data string

	// ID is the last "id:" field, if present.
	ID string
}

// Done reports whether e is the end-of-stream sentinel.
func (e *Event) Done() bool {
	return e.Data == DoneData
}
