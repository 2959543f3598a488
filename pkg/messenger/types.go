package messenger

// Webhook payload shapes for the Messenger platform. Only the fields the
// ingress path reads are modeled.

type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

type MessagingEvent struct {
	Sender    Principal        `json:"sender"`
	Recipient Principal        `json:"recipient"`
	Timestamp int64            `json:"timestamp"`
	Message   *ReceivedMessage `json:"message,omitempty"`
}

type Principal struct {
	ID string `json:"id"`
}

type ReceivedMessage struct {
	MID         string       `json:"mid"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	Type    string            `json:"type"`
	Payload AttachmentPayload `json:"payload"`
}

type AttachmentPayload struct {
	URL string `json:"url"`
}
