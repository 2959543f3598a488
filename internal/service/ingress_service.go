package service

import (
	"context"
	"time"

	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/events"
	"chat-agent-be/pkg/messenger"
	pktNats "chat-agent-be/pkg/nats"
)

// IngressService turns validated webhook deliveries into ingress events on
// the NATS stream. The webhook handler stays thin; everything downstream
// consumes the stream.
type IngressService struct {
	publisher   *pktNats.Publisher
	verifyToken string
	logger      logger.ILogger
}

func NewIngressService(publisher *pktNats.Publisher, verifyToken string, log logger.ILogger) *IngressService {
	return &IngressService{
		publisher:   publisher,
		verifyToken: verifyToken,
		logger:      log,
	}
}

// VerifySubscription answers the platform's GET challenge handshake.
func (s *IngressService) VerifySubscription(mode, token, challenge string) (string, bool) {
	if mode == "subscribe" && token == s.verifyToken {
		return challenge, true
	}
	return "", false
}

// ProcessWebhook fans every messaging event in a delivery onto the ingress
// stream. One bad event does not block the rest of the batch.
func (s *IngressService) ProcessWebhook(ctx context.Context, payload *messenger.WebhookPayload) error {
	for _, entry := range payload.Entry {
		for _, messaging := range entry.Messaging {
			if messaging.Message == nil {
				continue
			}

			ts := time.UnixMilli(messaging.Timestamp)
			senderID := messaging.Sender.ID
			// One thread per sender on this channel.
			threadID := senderID

			if messaging.Message.Text != "" {
				s.publish(ctx, events.InboundMessage{
					UserID:    senderID,
					ThreadID:  threadID,
					Kind:      "text",
					Payload:   messaging.Message.Text,
					Timestamp: ts,
				})
			}
			for _, att := range messaging.Message.Attachments {
				if att.Type != "image" || att.Payload.URL == "" {
					continue
				}
				s.publish(ctx, events.InboundMessage{
					UserID:    senderID,
					ThreadID:  threadID,
					Kind:      "image",
					Payload:   att.Payload.URL,
					Timestamp: ts,
				})
			}
		}
	}
	return nil
}

func (s *IngressService) publish(ctx context.Context, msg events.InboundMessage) {
	if err := s.publisher.Publish(ctx, events.NewMessageEvent(msg)); err != nil {
		s.logger.Error("IngressService", "failed to publish inbound event", map[string]interface{}{
			"user_id": msg.UserID,
			"kind":    msg.Kind,
			"error":   err.Error(),
		})
	}
}
