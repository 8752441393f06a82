// Package stream defines the progress events a run publishes and the sink
// interface transports plug into.
package stream

import "time"

// EventType names one stage transition or progress tick in a run.
type EventType string

// Event types, in the order a successful run emits them. new_postings_batch,
// collection_status, and extraction_progress repeat; the stream always ends
// with completed or failed.
const (
	EventStarting           EventType = "starting"
	EventConfigOK           EventType = "config_ok"
	EventCollectionStarted  EventType = "collection_started"
	EventNewPostingsBatch   EventType = "new_postings_batch"
	EventCollectionStatus   EventType = "collection_status"
	EventCollectionDone     EventType = "collection_done"
	EventExtractionProgress EventType = "extraction_progress"
	EventCompleted          EventType = "completed"
	EventFailed             EventType = "failed"
)

// Event is one progress update with its payload.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Payload   any       `json:"payload,omitempty"`
}

// Sink receives events. Implementations must not block the pipeline:
// transports drop or buffer on their own.
type Sink interface {
	Emit(event Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(event Event)

// Emit calls fn.
func (fn SinkFunc) Emit(event Event) { fn(event) }

// Reporter publishes events to an optional sink. The zero value and a nil
// reporter both discard everything, so pipeline code never nil-checks.
type Reporter struct {
	sink Sink
}

// NewReporter creates a reporter over sink. sink may be nil.
func NewReporter(sink Sink) *Reporter {
	return &Reporter{sink: sink}
}

// Emit publishes an event with the current timestamp.
func (r *Reporter) Emit(eventType EventType, message string, payload any) {
	if r == nil || r.sink == nil {
		return
	}
	r.sink.Emit(Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Message:   message,
		Payload:   payload,
	})
}
