package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "message.text").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation carried over the bus.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes used on the ingress stream.
const (
	TypeMessageText  = "message.text"
	TypeMessageImage = "message.image"
)

// InboundMessage is one raw user event as received from the webhook. The
// only ordering guarantee on ingress is monotonic timestamps per
// (user, thread).
type InboundMessage struct {
	UserID    string    `json:"user_id"`
	ThreadID  string    `json:"thread_id"`
	Kind      string    `json:"kind"`
	Payload   string    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessageEvent wraps an inbound message for publication.
func NewMessageEvent(msg InboundMessage) BaseEvent {
	eventType := TypeMessageText
	if msg.Kind == "image" {
		eventType = TypeMessageImage
	}
	return BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"user_id":   msg.UserID,
			"thread_id": msg.ThreadID,
			"kind":      msg.Kind,
			"payload":   msg.Payload,
			"timestamp": msg.Timestamp.Format(time.RFC3339Nano),
		},
		OccurredAt: msg.Timestamp,
	}
}

// ParseInboundMessage rebuilds an InboundMessage from an event payload.
func ParseInboundMessage(e Event) InboundMessage {
	data := e.Payload()
	msg := InboundMessage{
		Timestamp: e.Timestamp(),
	}
	if v, ok := data["user_id"].(string); ok {
		msg.UserID = v
	}
	if v, ok := data["thread_id"].(string); ok {
		msg.ThreadID = v
	}
	if v, ok := data["kind"].(string); ok {
		msg.Kind = v
	}
	if v, ok := data["payload"].(string); ok {
		msg.Payload = v
	}
	if v, ok := data["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			msg.Timestamp = ts
		}
	}
	return msg
}
