package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_STARTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation behind the constructors below.
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

// Session lifecycle event codes.
const (
	TypeSessionStarted  = "SESSION_STARTED"
	TypeQuizGenerated   = "QUIZ_GENERATED"
	TypeAnswerEvaluated = "ANSWER_EVALUATED"
	TypeSessionCleared  = "SESSION_CLEARED"
)

func SessionStarted(sessionID, topic string) Event {
	return BaseEvent{
		Type: TypeSessionStarted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"topic":      topic,
		},
		OccurredAt: time.Now(),
	}
}

func QuizGenerated(sessionID string) Event {
	return BaseEvent{
		Type: TypeQuizGenerated,
		Data: map[string]interface{}{
			"session_id": sessionID,
		},
		OccurredAt: time.Now(),
	}
}

// AnswerEvaluated carries the verdict and score only; the canonical answer
// never leaves the workflow service, not even on the event bus.
func AnswerEvaluated(sessionID, verdict string, score float64) Event {
	return BaseEvent{
		Type: TypeAnswerEvaluated,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"verdict":    verdict,
			"score":      score,
		},
		OccurredAt: time.Now(),
	}
}

func SessionCleared(sessionID string) Event {
	return BaseEvent{
		Type: TypeSessionCleared,
		Data: map[string]interface{}{
			"session_id": sessionID,
		},
		OccurredAt: time.Now(),
	}
}
