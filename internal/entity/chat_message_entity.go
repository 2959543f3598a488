package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// ChatMessage is one persisted exchange line within a thread.
type ChatMessage struct {
	Id        uuid.UUID
	ThreadId  string
	UserId    string
	TurnId    string
	Role      MessageRole
	Content   string
	CreatedAt time.Time
}
