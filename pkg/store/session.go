package store

import (
	"context"
	"errors"
	"fmt"
)

// KeyPrefix namespaces every session key so the shared store can hold
// unrelated data without collisions.
const KeyPrefix = "healthbot:session:"

// DefaultTTLSeconds is the sliding session lifetime when none is configured.
const DefaultTTLSeconds = 900

// PublicQuiz is the client-visible part of a generated quiz question.
type PublicQuiz struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Hint     string   `json:"hint"`
}

// Quiz pairs the public question with the canonical answer. The canonical
// answer is persisted for grading and must never reach a client response.
type Quiz struct {
	Public    PublicQuiz `json:"public"`
	Canonical string     `json:"canonical"`
}

// Evaluation is the most recent grading result for a session.
type Evaluation struct {
	Score       float64  `json:"score"`
	Verdict     string   `json:"verdict"` // "correct" | "partial" | "incorrect"
	Explanation string   `json:"explanation"`
	Citations   []string `json:"citations"`
}

// Session is the full per-session state. Fields fill in pipeline order:
// topic -> search_results -> summary -> quiz -> last_eval.
type Session struct {
	ID            string      `json:"session_id"`
	Topic         string      `json:"topic,omitempty"`
	SearchResults string      `json:"search_results,omitempty"`
	Summary       string      `json:"summary,omitempty"`
	Quiz          *Quiz       `json:"quiz,omitempty"`
	LastEval      *Evaluation `json:"last_eval,omitempty"`
}

// ErrSessionNotFound is returned when a session is absent or its TTL elapsed.
var ErrSessionNotFound = errors.New("session not found")

// StoreUnavailableError indicates the backing store could not be reached.
// The store never retries internally; that decision belongs to the caller.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("session store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// ISessionStore is the persistence contract for session state. Every read and
// write refreshes the sliding TTL. Update is a read-modify-write: it loads the
// current state (an empty session if absent), applies mutate to a local copy
// and writes the merged state back.
type ISessionStore interface {
	Create(ctx context.Context, id string, state *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, mutate func(*Session)) (*Session, error)
	Delete(ctx context.Context, id string) error
}
