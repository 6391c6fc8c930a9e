package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"github.com/nitishkumarnitc/HealthBot/internal/pkg/logger"
)

// statsKeyPrefix namespaces the usage counters away from session keys.
const statsKeyPrefix = "healthbot:stats:topic:"

// IConsumerService drains stage telemetry in the background: it logs each
// stage to the isolated telemetry log and maintains per-topic start counters
// in Redis.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	rdb       *redis.Client
	tlmLogger logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	rdb *redis.Client,
	tlmLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		rdb:       rdb,
		tlmLogger: tlmLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var record StageRecord
	if err := json.Unmarshal(msg.Payload, &record); err != nil {
		cs.tlmLogger.Error("telemetry", "failed to unmarshal stage record", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.tlmLogger.Info("telemetry", "stage completed", map[string]interface{}{
		"session_id": record.SessionID,
		"stage":      record.Stage,
		"topic":      record.Topic,
	})

	if record.Stage == "start" && cs.rdb != nil {
		key := statsKeyPrefix + slugify(record.Topic)
		if err := cs.rdb.Incr(ctx, key).Err(); err != nil {
			cs.tlmLogger.Warn("telemetry", "failed to bump topic counter", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}

func slugify(topic string) string {
	return strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(topic)), "-"))
}
