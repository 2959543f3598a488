package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/aggregate"
	"chat-agent-be/pkg/agent/state"
	"chat-agent-be/pkg/agent/turn"
	"chat-agent-be/pkg/events"
	pktNats "chat-agent-be/pkg/nats"
)

// IngressConsumerService drains the NATS ingress stream into the
// aggregator's debounce windows.
type IngressConsumerService struct {
	subscriber *pktNats.Subscriber
	aggregator *aggregate.Aggregator
	logger     logger.ILogger
}

func NewIngressConsumerService(sub *pktNats.Subscriber, agg *aggregate.Aggregator, log logger.ILogger) *IngressConsumerService {
	return &IngressConsumerService{
		subscriber: sub,
		aggregator: agg,
		logger:     log,
	}
}

// Start begins listening to the ingress stream with a durable consumer.
func (s *IngressConsumerService) Start() error {
	err := s.subscriber.Subscribe("ingress.>", "agent-ingress-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("IngressConsumerService", "failed to start ingress consumer", map[string]interface{}{"error": err})
		return err
	}
	s.logger.Info("IngressConsumerService", "listening on ingress.>", nil)
	return nil
}

func (s *IngressConsumerService) handleEvent(ctx context.Context, event events.Event) error {
	msg := events.ParseInboundMessage(event)
	if msg.UserID == "" || msg.ThreadID == "" {
		// Ack and drop malformed events; retrying cannot fix them.
		s.logger.Warn("IngressConsumerService", "dropping malformed ingress event", map[string]interface{}{
			"type": event.EventType(),
		})
		return nil
	}
	s.aggregator.Submit(msg)
	return nil
}

// TurnConsumerService subscribes to assembled turns on the internal bus and
// drives each one through the controller.
type TurnConsumerService struct {
	pubSub     *gochannel.GoChannel
	controller *turn.Controller
	logger     logger.ILogger
}

func NewTurnConsumerService(pubSub *gochannel.GoChannel, controller *turn.Controller, log logger.ILogger) *TurnConsumerService {
	return &TurnConsumerService{
		pubSub:     pubSub,
		controller: controller,
		logger:     log,
	}
}

func (s *TurnConsumerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, aggregate.TopicTurnReady)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *TurnConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var t state.Turn
	if err := json.Unmarshal(msg.Payload, &t); err != nil {
		log.Printf("[ERROR] Failed to unmarshal turn: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	// Controller sends a fallback reply on failure, so the turn is done
	// either way.
	if err := s.controller.Process(ctx, &t); err != nil {
		s.logger.Error("TurnConsumerService", "turn processed with failure", map[string]interface{}{
			"turn_id":   t.TurnID,
			"thread_id": t.ThreadID,
			"error":     err.Error(),
		})
	}
	msg.Ack()
}
