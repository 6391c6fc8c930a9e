package constant

import "fmt"

// Centralized prompt templates. Keeping them in one place keeps tone
// consistent and makes wording changes cheap.

const (
	// SearchQueryTemplateV1 frames the topic for the web-search provider.
	SearchQueryTemplateV1 = "medical explanation for %s"

	// NoResultsTemplateV1 is stored instead of an empty string when search
	// normalization yields nothing, so downstream stages always have input.
	NoResultsTemplateV1 = "No useful search results found for '%s'."

	SummarySystemPromptV1 = "You are an empathetic, patient-facing medical educator. " +
		"Keep explanations simple, friendly, and non-technical."

	QuizSystemPromptV1 = "You create clear, simple patient comprehension questions."

	GraderSystemPromptV1 = "You are a fair grader. Be concise and explain clearly."

	TopicValidatorSystemPromptV1 = "You are a medical topic validator. " +
		"Decide if the user input refers to a real health-related topic."
)

// Truncation limits keep prompts inside model context windows.
const (
	maxSummaryInputChars = 4000
	maxQuizInputChars    = 2500
	truncationMarker     = "\n\n[...truncated...]"
)

const summaryUserTemplateV1 = `Summarize the information below into simple, patient-friendly language.

Requirements:
- Short sentences (one idea per sentence)
- Use simple words; define any medical term briefly
- Add a 'Key takeaways' list with exactly 3 bullet points
- Add one sentence reminding the patient to consult their clinician if unsure
- No medical advice, no dosages

TEXT:
%s`

const quizUserTemplateV1 = `Based only on the summary below, create exactly ONE comprehension question.

Requirements:
- Prefer short-answer
- Keep the question very simple
- Provide a canonical correct answer (1-2 sentences)
- Provide one short hint
- Output ONLY a JSON object with keys: question, options, answer, hint

SUMMARY:
%s`

const graderUserTemplateV1 = `Grade the USER_ANSWER against the CANONICAL_ANSWER using only the SUMMARY.

Return JSON with:
  - score: float from 0.0 to 1.0
  - verdict: "correct", "partial", or "incorrect"
  - explanation: short plain-language explanation
  - citations: 1-2 short snippets from the SUMMARY (10-40 words each)

SUMMARY:
%s

CANONICAL_ANSWER:
%s

USER_ANSWER:
%s`

const topicValidatorUserTemplateV1 = `USER INPUT: %q

Return ONLY JSON with:
- valid: true/false
- cleaned_topic: string (only if valid)
- reason: string

Rules:
- valid ONLY if topic refers to a health condition, disease, symptom, treatment, medication, or human biology.
- Examples of INVALID: gibberish, random characters, technology terms, names, brands, places, or unrelated text.`

func BuildSummaryPrompt(text string) string {
	return fmt.Sprintf(summaryUserTemplateV1, Shorten(text, maxSummaryInputChars))
}

func BuildQuizPrompt(summary string) string {
	return fmt.Sprintf(quizUserTemplateV1, Shorten(summary, maxQuizInputChars))
}

func BuildGraderPrompt(summary, canonicalAnswer, userAnswer string) string {
	return fmt.Sprintf(graderUserTemplateV1, Shorten(summary, maxSummaryInputChars), canonicalAnswer, userAnswer)
}

func BuildTopicValidatorPrompt(topic string) string {
	return fmt.Sprintf(topicValidatorUserTemplateV1, topic)
}

// Shorten truncates very long text to avoid token overflow.
func Shorten(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	cut := maxChars - len(truncationMarker)
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + truncationMarker
}
