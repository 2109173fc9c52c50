package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "RERANK_DEGRADED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewRerankDegraded records that a question was answered on raw similarity
// order because the reranker was unavailable or failed.
func NewRerankDegraded(reason string, candidates int) BaseEvent {
	return BaseEvent{
		Type: "RERANK_DEGRADED",
		Data: map[string]interface{}{
			"reason":     reason,
			"candidates": candidates,
		},
		OccurredAt: time.Now(),
	}
}

// NewPaperIndexed records that a paper finished chunking and embedding.
func NewPaperIndexed(sourceFile string, chunks int) BaseEvent {
	return BaseEvent{
		Type: "PAPER_INDEXED",
		Data: map[string]interface{}{
			"source_file": sourceFile,
			"chunks":      chunks,
		},
		OccurredAt: time.Now(),
	}
}
