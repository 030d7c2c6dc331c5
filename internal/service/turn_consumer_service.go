package service

import (
	"context"
	"encoding/json"

	"smart-search-be/internal/entity"
	"smart-search-be/internal/pkg/logger"
	"smart-search-be/internal/repository/unitofwork"
	"smart-search-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// turnConsumerService writes published turns to the search_turns table and
// announces them on the event bus.
type turnConsumerService struct {
	subscriber     message.Subscriber
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher events.Publisher
	log            logger.ILogger
}

func NewTurnConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &turnConsumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (cs *turnConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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

// processMessage always acks: gochannel redelivers a nacked message
// immediately, so a database outage would spin.
func (cs *turnConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var turn entity.SearchTurn
	if err := json.Unmarshal(msg.Payload, &turn); err != nil {
		cs.log.Error("TurnConsumer", "Failed to unmarshal turn", map[string]interface{}{"error": err.Error()})
		return
	}

	details := map[string]interface{}{"session_id": turn.SessionId, "turn_id": turn.Id.String()}

	if cs.uowFactory != nil {
		uow := cs.uowFactory.NewUnitOfWork(ctx)
		if err := uow.SearchTurnRepository().Create(ctx, &turn); err != nil {
			details["error"] = err.Error()
			cs.log.Error("TurnConsumer", "Failed to persist turn", details)
			return
		}
		cs.log.Debug("TurnConsumer", "Turn persisted", details)
	}

	if cs.eventPublisher != nil {
		evt := events.New(events.SearchTurnCompleted, map[string]interface{}{
			"session_id": turn.SessionId,
			"turn_id":    turn.Id.String(),
			"used_query": turn.UsedQuery,
			"top_urls":   turn.ResultMeta.TopUrls,
		})
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("TurnConsumer", "Failed to publish turn event", map[string]interface{}{"error": err.Error()})
		}
	}
}
