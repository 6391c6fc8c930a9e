package dto

// --- Requests ---

type StartTopicRequest struct {
	Topic     string `json:"topic" validate:"required"`
	SessionID string `json:"session_id"`
}

type QuizRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type AnswerRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Answer    string `json:"answer" validate:"required"`
}

type ResetRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// --- Responses ---

// QuizView is the client-visible quiz record. There is deliberately no
// answer field here: the canonical answer stays server-side.
type QuizView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Hint     string   `json:"hint"`
}

type EvaluationView struct {
	Score       float64  `json:"score"`
	Verdict     string   `json:"verdict"`
	Explanation string   `json:"explanation"`
	Citations   []string `json:"citations"`
}

type StartTopicResponse struct {
	SessionID string `json:"session_id"`
	Topic     string `json:"topic"`
	Summary   string `json:"summary"`
}

type QuizResponse struct {
	SessionID string   `json:"session_id"`
	Quiz      QuizView `json:"quiz"`
}

type AnswerResponse struct {
	SessionID  string         `json:"session_id"`
	Evaluation EvaluationView `json:"evaluation"`
}

type ResetResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// SessionView is the read-back shape of a session, public fields only.
type SessionView struct {
	SessionID string          `json:"session_id"`
	Topic     string          `json:"topic,omitempty"`
	Summary   string          `json:"summary,omitempty"`
	Quiz      *QuizView       `json:"quiz,omitempty"`
	LastEval  *EvaluationView `json:"last_eval,omitempty"`
}

type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}
