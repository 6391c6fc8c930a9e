package service

import (
	"context"

	"github.com/nitishkumarnitc/HealthBot/internal/constant"
	"github.com/nitishkumarnitc/HealthBot/internal/pkg/logger"
	"github.com/nitishkumarnitc/HealthBot/pkg/llm"
	"github.com/nitishkumarnitc/HealthBot/pkg/parser"
)

// ITopicValidationService asks the model whether a submitted topic is a real
// health-related subject and, if so, for a cleaned-up form of it. Validation
// is advisory: any failure (provider down, unreadable output) falls open and
// the topic is used as given, so the flow is never blocked by the validator.
type ITopicValidationService interface {
	CleanTopic(ctx context.Context, topic string) string
}

type topicValidationService struct {
	generator llm.LLMProvider
	sysLogger logger.ILogger
}

func NewTopicValidationService(generator llm.LLMProvider, sysLogger logger.ILogger) ITopicValidationService {
	return &topicValidationService{generator: generator, sysLogger: sysLogger}
}

func (s *topicValidationService) CleanTopic(ctx context.Context, topic string) string {
	out, err := s.generator.Generate(ctx,
		constant.TopicValidatorSystemPromptV1,
		constant.BuildTopicValidatorPrompt(topic),
	)
	if err != nil {
		s.sysLogger.Warn("topic_validation", "validator call failed, using topic as given", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
		return topic
	}

	record, ok := parser.ParseTopicValidation(out)
	if !ok {
		s.sysLogger.Warn("topic_validation", "validator output unreadable, using topic as given", map[string]interface{}{
			"topic": topic,
		})
		return topic
	}

	if record.Valid && record.CleanedTopic != "" {
		return record.CleanedTopic
	}
	if !record.Valid {
		s.sysLogger.Info("topic_validation", "topic flagged by validator", map[string]interface{}{
			"topic":  topic,
			"reason": record.Reason,
		})
	}
	return topic
}
