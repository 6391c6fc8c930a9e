package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitishkumarnitc/HealthBot/internal/constant"
	"github.com/nitishkumarnitc/HealthBot/pkg/events"
	"github.com/nitishkumarnitc/HealthBot/pkg/llm"
	"github.com/nitishkumarnitc/HealthBot/pkg/retry"
	"github.com/nitishkumarnitc/HealthBot/pkg/store"
)

// --- Test doubles ---

type mockSearcher struct {
	result any
	errs   []error // consumed one per call; nil entry means success
	calls  int
}

func (m *mockSearcher) Search(ctx context.Context, query string) (any, error) {
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return m.result, nil
}

// mockGenerator replies per system prompt so one double serves the
// summarize, quiz and grade calls.
type mockGenerator struct {
	replies map[string]string // keyed by system prompt
	errs    []error
	calls   int
}

func (m *mockGenerator) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", errors.New("empty history")
	}
	return m.Generate(ctx, history[0].Content, history[len(history)-1].Content, opts...)
}

func (m *mockGenerator) Generate(ctx context.Context, system, user string, opts ...llm.Option) (string, error) {
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return "", err
		}
	}
	if reply, ok := m.replies[system]; ok {
		return reply, nil
	}
	return "generated text", nil
}

type mockBus struct {
	published []events.Event
}

func (m *mockBus) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 4 * time.Millisecond, Multiplier: 2.0}
}

const (
	summarySystem = constant.SummarySystemPromptV1
	quizSystem    = constant.QuizSystemPromptV1
	graderSystem  = constant.GraderSystemPromptV1
)

func newFixture(searcher *mockSearcher, generator *mockGenerator) (IWorkflowService, store.ISessionStore) {
	sessions := store.NewMemorySessionStore(time.Minute)
	svc := NewWorkflowService(sessions, searcher, generator, nil, nil, nil, nopLogger{}, fastRetry())
	return svc, sessions
}

func defaultSearcher() *mockSearcher {
	return &mockSearcher{result: map[string]any{
		"results": []any{
			map[string]any{"title": "Overview", "url": "https://example.org", "snippet": "Useful facts."},
		},
	}}
}

func defaultGenerator() *mockGenerator {
	return &mockGenerator{replies: map[string]string{
		summarySystem: "  A simple summary for patients.  ",
		quizSystem:    `{"question":"What organ makes insulin?","options":null,"answer":"The pancreas","hint":"Think digestion."}`,
		graderSystem:  `{"score":1.0,"verdict":"correct","explanation":"Spot on.","citations":["The pancreas makes insulin."]}`,
	}}
}

// --- Start ---

func TestStart_RunsSearchThenSummarize(t *testing.T) {
	svc, sessions := newFixture(defaultSearcher(), defaultGenerator())

	res, err := svc.Start(context.Background(), "  Diabetes  ", "")
	require.NoError(t, err)

	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, "Diabetes", res.Topic, "topic is trimmed")
	assert.Equal(t, "A simple summary for patients.", res.Summary, "summary is trimmed provider text")

	stored, err := sessions.Get(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Diabetes", stored.Topic)
	assert.Contains(t, stored.SearchResults, "Overview — https://example.org")
	assert.Equal(t, "A simple summary for patients.", stored.Summary)
	assert.Nil(t, stored.Quiz)
	assert.Nil(t, stored.LastEval)
}

func TestStart_EmptyTopicRejected(t *testing.T) {
	svc, _ := newFixture(defaultSearcher(), defaultGenerator())

	for _, topic := range []string{"", "   ", "\t\n"} {
		_, err := svc.Start(context.Background(), topic, "")
		var invalid *InvalidTopicError
		assert.ErrorAs(t, err, &invalid, "topic %q", topic)
	}
}

func TestStart_ClientSuppliedSessionID(t *testing.T) {
	svc, _ := newFixture(defaultSearcher(), defaultGenerator())

	res, err := svc.Start(context.Background(), "Asthma", "my-session")
	require.NoError(t, err)
	assert.Equal(t, "my-session", res.SessionID)
}

func TestStart_EmptySearchResultsGetSentinel(t *testing.T) {
	searcher := &mockSearcher{result: []any{}}
	svc, sessions := newFixture(searcher, defaultGenerator())

	res, err := svc.Start(context.Background(), "Gout", "")
	require.NoError(t, err)

	stored, err := sessions.Get(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "No useful search results found for 'Gout'.", stored.SearchResults)
}

func TestStart_SearchFailureLeavesPartialState(t *testing.T) {
	boom := errors.New("search provider down")
	searcher := &mockSearcher{errs: []error{boom, boom, boom}}
	svc, sessions := newFixture(searcher, defaultGenerator())

	_, err := svc.Start(context.Background(), "Diabetes", "sess-1")

	var upstream *UpstreamFailureError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "search", upstream.Stage)
	assert.ErrorIs(t, err, boom)

	// The created session survives with its topic; nothing is rolled back.
	stored, gerr := sessions.Get(context.Background(), "sess-1")
	require.NoError(t, gerr)
	assert.Equal(t, "Diabetes", stored.Topic)
	assert.Empty(t, stored.SearchResults)
}

func TestStart_SummarizeFailureNamesStage(t *testing.T) {
	boom := errors.New("llm down")
	generator := &mockGenerator{errs: []error{boom, boom, boom}}
	svc, sessions := newFixture(defaultSearcher(), generator)

	_, err := svc.Start(context.Background(), "Diabetes", "sess-2")

	var upstream *UpstreamFailureError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "summarize", upstream.Stage)

	// search_results were durably written before summarize failed.
	stored, gerr := sessions.Get(context.Background(), "sess-2")
	require.NoError(t, gerr)
	assert.NotEmpty(t, stored.SearchResults)
	assert.Empty(t, stored.Summary)
}

func TestStart_TransientSearchFailureRecovered(t *testing.T) {
	transient := errors.New("flaky")
	searcher := defaultSearcher()
	searcher.errs = []error{transient, transient, nil}
	svc, _ := newFixture(searcher, defaultGenerator())

	_, err := svc.Start(context.Background(), "Diabetes", "")
	require.NoError(t, err, "two failures then success must be absorbed by retry")
	assert.Equal(t, 3, searcher.calls)
}

// --- RequestQuiz ---

func startSession(t *testing.T, svc IWorkflowService) string {
	t.Helper()
	res, err := svc.Start(context.Background(), "Diabetes", "")
	require.NoError(t, err)
	return res.SessionID
}

func TestRequestQuiz_SplitsOffCanonicalAnswer(t *testing.T) {
	svc, sessions := newFixture(defaultSearcher(), defaultGenerator())
	id := startSession(t, svc)

	res, err := svc.RequestQuiz(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "What organ makes insulin?", res.Quiz.Question)
	assert.Equal(t, "Think digestion.", res.Quiz.Hint)

	// The response must not contain the canonical answer anywhere.
	raw, merr := json.Marshal(res)
	require.NoError(t, merr)
	assert.NotContains(t, string(raw), "The pancreas")

	// But the store keeps it for grading.
	stored, gerr := sessions.Get(context.Background(), id)
	require.NoError(t, gerr)
	require.NotNil(t, stored.Quiz)
	assert.Equal(t, "The pancreas", stored.Quiz.Canonical)
}

func TestRequestQuiz_MalformedProviderOutputDegrades(t *testing.T) {
	generator := defaultGenerator()
	generator.replies[quizSystem] = "Here is a question: what is insulin for?"
	svc, sessions := newFixture(defaultSearcher(), generator)
	id := startSession(t, svc)

	res, err := svc.RequestQuiz(context.Background(), id)
	require.NoError(t, err, "malformed output must not fail the stage")

	assert.Equal(t, "Here is a question: what is insulin for?", res.Quiz.Question)

	raw, merr := json.Marshal(res)
	require.NoError(t, merr)
	assert.NotContains(t, strings.ToLower(string(raw)), "answer", "degraded output carries no answer field")

	stored, gerr := sessions.Get(context.Background(), id)
	require.NoError(t, gerr)
	assert.Empty(t, stored.Quiz.Canonical)
}

func TestRequestQuiz_WithoutSummaryFails(t *testing.T) {
	svc, sessions := newFixture(defaultSearcher(), defaultGenerator())
	require.NoError(t, sessions.Create(context.Background(), "bare", &store.Session{ID: "bare", Topic: "Flu"}))

	_, err := svc.RequestQuiz(context.Background(), "bare")

	var precondition *PreconditionMissingError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, "summary", precondition.Field)
}

func TestRequestQuiz_UnknownSessionNotFound(t *testing.T) {
	svc, _ := newFixture(defaultSearcher(), defaultGenerator())

	_, err := svc.RequestQuiz(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestRequestQuiz_RegenerationReplacesPriorQuiz(t *testing.T) {
	generator := defaultGenerator()
	svc, sessions := newFixture(defaultSearcher(), generator)
	id := startSession(t, svc)

	_, err := svc.RequestQuiz(context.Background(), id)
	require.NoError(t, err)

	generator.replies[quizSystem] = `{"question":"Second question?","options":null,"answer":"Second answer","hint":"h2"}`
	res, err := svc.RequestQuiz(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Second question?", res.Quiz.Question)

	stored, gerr := sessions.Get(context.Background(), id)
	require.NoError(t, gerr)
	assert.Equal(t, "Second answer", stored.Quiz.Canonical, "regeneration fully replaces the quiz")
	assert.Equal(t, "A simple summary for patients.", stored.Summary, "earlier fields are untouched")
}

// --- SubmitAnswer ---

func TestSubmitAnswer_ReturnsFullEvaluation(t *testing.T) {
	svc, sessions := newFixture(defaultSearcher(), defaultGenerator())
	id := startSession(t, svc)
	_, err := svc.RequestQuiz(context.Background(), id)
	require.NoError(t, err)

	res, err := svc.SubmitAnswer(context.Background(), id, "The pancreas makes it")
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.Evaluation.Score)
	assert.Equal(t, "correct", res.Evaluation.Verdict)
	assert.Equal(t, "Spot on.", res.Evaluation.Explanation)
	assert.Equal(t, []string{"The pancreas makes insulin."}, res.Evaluation.Citations)

	stored, gerr := sessions.Get(context.Background(), id)
	require.NoError(t, gerr)
	require.NotNil(t, stored.LastEval)
	assert.Equal(t, "correct", stored.LastEval.Verdict)
}

func TestSubmitAnswer_WithoutQuizFails(t *testing.T) {
	svc, _ := newFixture(defaultSearcher(), defaultGenerator())
	id := startSession(t, svc)

	_, err := svc.SubmitAnswer(context.Background(), id, "a guess")

	var noQuiz *NoActiveQuizError
	assert.ErrorAs(t, err, &noQuiz)
}

func TestSubmitAnswer_GraderProseFallsBackToContainment(t *testing.T) {
	generator := defaultGenerator()
	generator.replies[graderSystem] = "I'd say that's about right, well done."
	svc, _ := newFixture(defaultSearcher(), generator)
	id := startSession(t, svc)
	_, err := svc.RequestQuiz(context.Background(), id)
	require.NoError(t, err)

	// Canonical "The pancreas" is contained (case-insensitively).
	res, err := svc.SubmitAnswer(context.Background(), id, "it is the PANCREAS I believe")
	require.NoError(t, err)
	assert.Equal(t, "correct", res.Evaluation.Verdict)
	assert.Equal(t, 1.0, res.Evaluation.Score)

	res, err = svc.SubmitAnswer(context.Background(), id, "the liver")
	require.NoError(t, err)
	assert.Equal(t, "incorrect", res.Evaluation.Verdict)
	assert.Equal(t, 0.0, res.Evaluation.Score)
}

func TestSubmitAnswer_GradeFailureNamesStage(t *testing.T) {
	generator := defaultGenerator()
	svc, _ := newFixture(defaultSearcher(), generator)
	id := startSession(t, svc)
	_, err := svc.RequestQuiz(context.Background(), id)
	require.NoError(t, err)

	boom := errors.New("grader down")
	generator.errs = []error{boom, boom, boom}

	_, err = svc.SubmitAnswer(context.Background(), id, "whatever")

	var upstream *UpstreamFailureError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "grade", upstream.Stage)
}

// --- Reset / GetSession ---

func TestReset_DeletesAndIsIdempotent(t *testing.T) {
	svc, sessions := newFixture(defaultSearcher(), defaultGenerator())
	id := startSession(t, svc)

	res, err := svc.Reset(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "cleared", res.Status)

	_, err = sessions.Get(context.Background(), id)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	_, err = svc.Reset(context.Background(), id)
	assert.NoError(t, err, "reset of a gone session still succeeds")
}

func TestGetSession_NeverExposesCanonical(t *testing.T) {
	svc, _ := newFixture(defaultSearcher(), defaultGenerator())
	id := startSession(t, svc)
	_, err := svc.RequestQuiz(context.Background(), id)
	require.NoError(t, err)

	view, err := svc.GetSession(context.Background(), id)
	require.NoError(t, err)

	require.NotNil(t, view.Quiz)
	assert.Equal(t, "What organ makes insulin?", view.Quiz.Question)

	raw, merr := json.Marshal(view)
	require.NoError(t, merr)
	assert.NotContains(t, string(raw), "The pancreas")
	assert.NotContains(t, string(raw), "canonical")
}

func TestLifecycleEvents_EmittedWithoutCanonical(t *testing.T) {
	sessions := store.NewMemorySessionStore(time.Minute)
	bus := &mockBus{}
	svc := NewWorkflowService(sessions, defaultSearcher(), defaultGenerator(), nil, nil, bus, nopLogger{}, fastRetry())

	res, err := svc.Start(context.Background(), "Diabetes", "")
	require.NoError(t, err)
	_, err = svc.RequestQuiz(context.Background(), res.SessionID)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(context.Background(), res.SessionID, "the pancreas")
	require.NoError(t, err)
	_, err = svc.Reset(context.Background(), res.SessionID)
	require.NoError(t, err)

	var types []string
	for _, event := range bus.published {
		types = append(types, event.EventType())
		raw, merr := json.Marshal(event.Payload())
		require.NoError(t, merr)
		assert.NotContains(t, string(raw), "The pancreas", "events never carry the canonical answer")
	}
	assert.Equal(t, []string{
		events.TypeSessionStarted,
		events.TypeQuizGenerated,
		events.TypeAnswerEvaluated,
		events.TypeSessionCleared,
	}, types)
}

func TestGetSession_UnknownSession(t *testing.T) {
	svc, _ := newFixture(defaultSearcher(), defaultGenerator())

	_, err := svc.GetSession(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}
