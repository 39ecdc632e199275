package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PHASE_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

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

// Event type codes.
const (
	TypePhaseStarted          = "PHASE_STARTED"
	TypePhaseCompleted        = "PHASE_COMPLETED"
	TypePhaseFailed           = "PHASE_FAILED"
	TypeCorpusDocumentCreated = "CORPUS_DOCUMENT_CREATED"
)

// NewPhaseEvent reports progress of one (session, vendor, phase) step.
func NewPhaseEvent(eventType, sessionId, vendor, phase string, detail map[string]interface{}) BaseEvent {
	data := map[string]interface{}{
		"session_id": sessionId,
		"vendor":     vendor,
		"phase":      phase,
	}
	for k, v := range detail {
		data[k] = v
	}
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

// NewCorpusDocumentCreated signals that a corpus document still needs its
// embedding computed.
func NewCorpusDocumentCreated(documentId string) BaseEvent {
	return BaseEvent{
		Type: TypeCorpusDocumentCreated,
		Data: map[string]interface{}{
			"document_id": documentId,
		},
		OccurredAt: time.Now(),
	}
}
