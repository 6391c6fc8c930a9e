package service

import "fmt"

// InvalidTopicError rejects an empty or whitespace-only topic. Surfaced
// immediately, never retried.
type InvalidTopicError struct{}

func (e *InvalidTopicError) Error() string {
	return "topic must not be empty"
}

// PreconditionMissingError means a stage was invoked before the session field
// it depends on exists. This is a logic error, not a transient failure.
type PreconditionMissingError struct {
	Field string
}

func (e *PreconditionMissingError) Error() string {
	return fmt.Sprintf("required session field %q is missing", e.Field)
}

// NoActiveQuizError means an answer was submitted before any quiz was
// generated for the session.
type NoActiveQuizError struct {
	SessionID string
}

func (e *NoActiveQuizError) Error() string {
	return "no active quiz for this session; request a quiz first"
}

// UpstreamFailureError wraps the last error after an external provider call
// exhausted all retry attempts. Stage names the failing call: "search",
// "summarize", "quiz" or "grade".
type UpstreamFailureError struct {
	Stage string
	Err   error
}

func (e *UpstreamFailureError) Error() string {
	return fmt.Sprintf("%s stage failed upstream: %v", e.Stage, e.Err)
}

func (e *UpstreamFailureError) Unwrap() error { return e.Err }
