package answer

// EventType is the kind of message emitted while answering a question.
type EventType string

const (
	EventToken     EventType = "token"
	EventStreamEnd EventType = "stream_end"
	EventError     EventType = "error"
)

// Event is one item in the answer stream. The stream always ends with
// exactly one terminal event: a stream_end carrying the full answer, or
// an error. Tokens never follow a terminal event.
type Event struct {
	Type    EventType
	Content string
}
