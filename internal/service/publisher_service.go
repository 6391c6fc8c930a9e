package service

import (
	"encoding/json"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// StageRecord is the telemetry message emitted after each completed stage.
type StageRecord struct {
	SessionID string    `json:"session_id"`
	Stage     string    `json:"stage"`
	Topic     string    `json:"topic"`
	At        time.Time `json:"at"`
}

// IPublisherService publishes stage telemetry onto the in-process bus.
// Publishing is fire-and-forget; a full or failed bus never affects the flow.
type IPublisherService interface {
	PublishStage(record StageRecord)
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishStage(record StageRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal stage record: %v", err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := ps.pubSub.Publish(ps.topicName, msg); err != nil {
		log.Printf("[ERROR] Failed to publish stage record: %v", err)
	}
}
