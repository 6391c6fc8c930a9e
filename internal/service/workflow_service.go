package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nitishkumarnitc/HealthBot/internal/constant"
	"github.com/nitishkumarnitc/HealthBot/internal/dto"
	"github.com/nitishkumarnitc/HealthBot/internal/pkg/logger"
	"github.com/nitishkumarnitc/HealthBot/pkg/events"
	"github.com/nitishkumarnitc/HealthBot/pkg/llm"
	"github.com/nitishkumarnitc/HealthBot/pkg/parser"
	"github.com/nitishkumarnitc/HealthBot/pkg/retry"
	"github.com/nitishkumarnitc/HealthBot/pkg/search"
	"github.com/nitishkumarnitc/HealthBot/pkg/store"
)

// IWorkflowService drives a session through the learning pipeline:
// topic -> search -> summarize -> quiz -> evaluate. Each stage reloads the
// session from the store, mutates a local copy and writes the merge back, so
// the store stays the single source of truth across requests and restarts.
type IWorkflowService interface {
	Start(ctx context.Context, topic, sessionID string) (*dto.StartTopicResponse, error)
	RequestQuiz(ctx context.Context, sessionID string) (*dto.QuizResponse, error)
	SubmitAnswer(ctx context.Context, sessionID, userAnswer string) (*dto.AnswerResponse, error)
	Reset(ctx context.Context, sessionID string) (*dto.ResetResponse, error)
	GetSession(ctx context.Context, sessionID string) (*dto.SessionView, error)
}

// EventPublisher is the outbound event bus contract. Nil is allowed; events
// are best-effort and never block or fail the flow.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type workflowService struct {
	sessions  store.ISessionStore
	searcher  search.Provider
	generator llm.LLMProvider
	validator ITopicValidationService
	telemetry IPublisherService
	bus       EventPublisher
	sysLogger logger.ILogger
	retryCfg  retry.Config
}

func NewWorkflowService(
	sessions store.ISessionStore,
	searcher search.Provider,
	generator llm.LLMProvider,
	validator ITopicValidationService,
	telemetry IPublisherService,
	bus EventPublisher,
	sysLogger logger.ILogger,
	retryCfg retry.Config,
) IWorkflowService {
	return &workflowService{
		sessions:  sessions,
		searcher:  searcher,
		generator: generator,
		validator: validator,
		telemetry: telemetry,
		bus:       bus,
		sysLogger: sysLogger,
		retryCfg:  retryCfg,
	}
}

// Start creates the session and synchronously runs search then summarize.
// Each sub-stage is durably written before the next begins; on failure the
// session is left in the last written state, nothing is rolled back.
func (s *workflowService) Start(ctx context.Context, topic, sessionID string) (*dto.StartTopicResponse, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, &InvalidTopicError{}
	}

	if s.validator != nil {
		topic = s.validator.CleanTopic(ctx, topic)
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if err := s.sessions.Create(ctx, sessionID, &store.Session{ID: sessionID, Topic: topic}); err != nil {
		return nil, err
	}

	if err := s.runSearch(ctx, sessionID); err != nil {
		return nil, err
	}
	session, err := s.runSummarize(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, events.SessionStarted(sessionID, topic))
	s.stage(sessionID, "start", topic)

	return &dto.StartTopicResponse{
		SessionID: sessionID,
		Topic:     session.Topic,
		Summary:   session.Summary,
	}, nil
}

// runSearch invokes the search collaborator, flattens whatever shape comes
// back and stores it. An empty normalization is replaced by a sentinel so
// downstream stages always receive well-formed input.
func (s *workflowService) runSearch(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Topic == "" {
		return &PreconditionMissingError{Field: "topic"}
	}

	query := fmt.Sprintf(constant.SearchQueryTemplateV1, session.Topic)
	started := time.Now()
	raw, err := retry.Do(ctx, s.retryCfg, "search", func(ctx context.Context) (any, error) {
		return s.searcher.Search(ctx, query)
	})
	if err != nil {
		return s.upstream("search", sessionID, err)
	}

	normalized := search.Normalize(raw)
	if strings.TrimSpace(normalized) == "" {
		normalized = fmt.Sprintf(constant.NoResultsTemplateV1, session.Topic)
	}

	_, err = s.sessions.Update(ctx, sessionID, func(sess *store.Session) {
		sess.SearchResults = normalized
	})
	if err != nil {
		return err
	}

	s.sysLogger.Info("workflow", "search stage complete", map[string]interface{}{
		"session_id": sessionID,
		"elapsed_ms": time.Since(started).Milliseconds(),
		"chars":      len(normalized),
	})
	return nil
}

// runSummarize turns the stored search results into patient-friendly text.
// The provider output is the desired result as-is; no parsing.
func (s *workflowService) runSummarize(ctx context.Context, sessionID string) (*store.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.SearchResults == "" {
		return nil, &PreconditionMissingError{Field: "search_results"}
	}

	out, err := retry.Do(ctx, s.retryCfg, "generate", func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, constant.SummarySystemPromptV1, constant.BuildSummaryPrompt(session.SearchResults))
	})
	if err != nil {
		return nil, s.upstream("summarize", sessionID, err)
	}

	return s.sessions.Update(ctx, sessionID, func(sess *store.Session) {
		sess.Summary = strings.TrimSpace(out)
	})
}

// RequestQuiz generates exactly one comprehension question from the summary.
// The canonical answer is split off before anything is returned; it persists
// in the session for grading. A repeat call replaces the prior quiz entirely.
func (s *workflowService) RequestQuiz(ctx context.Context, sessionID string) (*dto.QuizResponse, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Summary == "" {
		return nil, &PreconditionMissingError{Field: "summary"}
	}

	out, err := retry.Do(ctx, s.retryCfg, "generate", func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, constant.QuizSystemPromptV1, constant.BuildQuizPrompt(session.Summary))
	})
	if err != nil {
		return nil, s.upstream("quiz", sessionID, err)
	}

	record := parser.ParseQuiz(out)
	quiz := &store.Quiz{
		Public: store.PublicQuiz{
			Question: record.Question,
			Options:  record.Options,
			Hint:     record.Hint,
		},
		Canonical: record.Answer,
	}

	// Whole-quiz replacement: public and canonical always travel together,
	// so a concurrent regeneration can never leave a torn pair.
	if _, err := s.sessions.Update(ctx, sessionID, func(sess *store.Session) {
		sess.Quiz = quiz
	}); err != nil {
		return nil, err
	}

	s.emit(ctx, events.QuizGenerated(sessionID))
	s.stage(sessionID, "quiz", session.Topic)

	return &dto.QuizResponse{
		SessionID: sessionID,
		Quiz: dto.QuizView{
			Question: quiz.Public.Question,
			Options:  quiz.Public.Options,
			Hint:     quiz.Public.Hint,
		},
	}, nil
}

// SubmitAnswer grades the user's answer against the stored canonical answer.
// Grading output carries no secret field, so it is returned in full.
func (s *workflowService) SubmitAnswer(ctx context.Context, sessionID, userAnswer string) (*dto.AnswerResponse, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Quiz == nil {
		return nil, &NoActiveQuizError{SessionID: sessionID}
	}
	if session.Summary == "" {
		return nil, &PreconditionMissingError{Field: "summary"}
	}

	canonical := session.Quiz.Canonical
	out, err := retry.Do(ctx, s.retryCfg, "grade", func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, constant.GraderSystemPromptV1,
			constant.BuildGraderPrompt(session.Summary, canonical, userAnswer))
	})
	if err != nil {
		return nil, s.upstream("grade", sessionID, err)
	}

	record := parser.ParseEvaluation(out, canonical, userAnswer)
	eval := &store.Evaluation{
		Score:       record.Score,
		Verdict:     record.Verdict,
		Explanation: record.Explanation,
		Citations:   record.Citations,
	}

	if _, err := s.sessions.Update(ctx, sessionID, func(sess *store.Session) {
		sess.LastEval = eval
	}); err != nil {
		return nil, err
	}

	s.emit(ctx, events.AnswerEvaluated(sessionID, eval.Verdict, eval.Score))
	s.stage(sessionID, "evaluate", session.Topic)

	return &dto.AnswerResponse{
		SessionID: sessionID,
		Evaluation: dto.EvaluationView{
			Score:       eval.Score,
			Verdict:     eval.Verdict,
			Explanation: eval.Explanation,
			Citations:   eval.Citations,
		},
	}, nil
}

// Reset deletes the session. Resetting an unknown session succeeds.
func (s *workflowService) Reset(ctx context.Context, sessionID string) (*dto.ResetResponse, error) {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return nil, err
	}
	s.emit(ctx, events.SessionCleared(sessionID))
	return &dto.ResetResponse{SessionID: sessionID, Status: "cleared"}, nil
}

// GetSession returns the public view of a session. The canonical answer is
// stripped here, the single choke point between stored and served state.
func (s *workflowService) GetSession(ctx context.Context, sessionID string) (*dto.SessionView, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &dto.SessionView{
		SessionID: session.ID,
		Topic:     session.Topic,
		Summary:   session.Summary,
	}
	if session.Quiz != nil {
		view.Quiz = &dto.QuizView{
			Question: session.Quiz.Public.Question,
			Options:  session.Quiz.Public.Options,
			Hint:     session.Quiz.Public.Hint,
		}
	}
	if session.LastEval != nil {
		view.LastEval = &dto.EvaluationView{
			Score:       session.LastEval.Score,
			Verdict:     session.LastEval.Verdict,
			Explanation: session.LastEval.Explanation,
			Citations:   session.LastEval.Citations,
		}
	}
	return view, nil
}

// upstream translates retry exhaustion into a typed failure naming the stage.
// Other errors (context cancellation, permanent markers) pass through.
func (s *workflowService) upstream(stage, sessionID string, err error) error {
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		s.sysLogger.Error("workflow", "stage exhausted retries", map[string]interface{}{
			"session_id": sessionID,
			"stage":      stage,
			"error":      exhausted.Err.Error(),
		})
		return &UpstreamFailureError{Stage: stage, Err: exhausted.Err}
	}
	return err
}

func (s *workflowService) emit(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.sysLogger.Warn("workflow", "event publish failed", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func (s *workflowService) stage(sessionID, stage, topic string) {
	if s.telemetry == nil {
		return
	}
	s.telemetry.PublishStage(StageRecord{
		SessionID: sessionID,
		Stage:     stage,
		Topic:     topic,
		At:        time.Now(),
	})
}
