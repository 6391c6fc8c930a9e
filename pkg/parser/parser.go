// Package parser turns opaque text-generation output into structured records.
// Providers are asked to answer with a JSON object but routinely wrap it in
// prose, markdown fences or apologies; this package extracts what it can and
// degrades deterministically when it cannot. No function here ever returns an
// error and none performs I/O.
package parser

import (
	"encoding/json"
	"strings"
)

// maxCitationChars bounds the canonical-answer snippet used as a fallback
// citation.
const maxCitationChars = 120

// QuizRecord is a generated quiz question including the canonical answer.
// The answer is split off by the workflow before anything reaches a client.
type QuizRecord struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
	Hint     string   `json:"hint"`
}

// Evaluation is a grading record.
type Evaluation struct {
	Score       float64  `json:"score"`
	Verdict     string   `json:"verdict"`
	Explanation string   `json:"explanation"`
	Citations   []string `json:"citations"`
}

// TopicValidation is the validator's judgement of a submitted topic.
type TopicValidation struct {
	Valid        bool   `json:"valid"`
	CleanedTopic string `json:"cleaned_topic"`
	Reason       string `json:"reason"`
}

// ExtractJSON returns the greedy brace-delimited substring of raw, from the
// first '{' to the last '}'. The boolean reports whether such a substring
// exists at all; the content is not validated here.
func ExtractJSON(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// ParseQuiz extracts a quiz record from provider output. If no decodable JSON
// object is present, or it decodes to a record with an empty question, the
// whole raw text becomes the question and the remaining fields stay empty.
// The degraded record has no canonical answer, so fallback grading later
// treats any answer against it leniently rather than crashing the flow.
func ParseQuiz(raw string) QuizRecord {
	if blob, ok := ExtractJSON(raw); ok {
		var record QuizRecord
		if err := json.Unmarshal([]byte(blob), &record); err == nil {
			if strings.TrimSpace(record.Question) != "" {
				return record
			}
		}
	}
	return QuizRecord{Question: strings.TrimSpace(raw)}
}

// ParseEvaluation extracts a grading record from provider output. When
// extraction fails it falls back to case-insensitive substring containment of
// the canonical answer within the user's answer: contained means "correct"
// with score 1.0, otherwise "incorrect" with 0.0.
func ParseEvaluation(raw, canonicalAnswer, userAnswer string) Evaluation {
	if blob, ok := ExtractJSON(raw); ok {
		var record Evaluation
		if err := json.Unmarshal([]byte(blob), &record); err == nil {
			return normalizeEvaluation(record)
		}
	}
	return fallbackEvaluation(canonicalAnswer, userAnswer)
}

// ParseTopicValidation extracts a validator judgement. The boolean is false
// when the output held no decodable JSON object; the caller decides whether
// to fail open.
func ParseTopicValidation(raw string) (TopicValidation, bool) {
	if blob, ok := ExtractJSON(raw); ok {
		var record TopicValidation
		if err := json.Unmarshal([]byte(blob), &record); err == nil {
			return record, true
		}
	}
	return TopicValidation{}, false
}

// normalizeEvaluation keeps decoded records well-formed: score clamped into
// [0,1], verdict lowercased, citations never nil. Semantic correctness of the
// provider's judgement is not this package's problem.
func normalizeEvaluation(record Evaluation) Evaluation {
	if record.Score < 0 {
		record.Score = 0
	}
	if record.Score > 1 {
		record.Score = 1
	}
	record.Verdict = strings.ToLower(strings.TrimSpace(record.Verdict))
	if record.Citations == nil {
		record.Citations = []string{}
	}
	return record
}

func fallbackEvaluation(canonicalAnswer, userAnswer string) Evaluation {
	canonical := strings.ToLower(strings.TrimSpace(canonicalAnswer))
	answer := strings.ToLower(strings.TrimSpace(userAnswer))

	verdict := "incorrect"
	score := 0.0
	explanation := "Does not match the canonical answer."
	if strings.Contains(answer, canonical) {
		verdict = "correct"
		score = 1.0
		explanation = "Matches the canonical answer."
	}

	return Evaluation{
		Score:       score,
		Verdict:     verdict,
		Explanation: explanation,
		Citations:   []string{truncate(canonicalAnswer, maxCitationChars)},
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
