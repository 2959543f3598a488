package contract

import (
	"context"

	"chat-agent-be/internal/entity"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	CreateBatch(ctx context.Context, messages []*entity.ChatMessage) error
	GetRecentByThreadId(ctx context.Context, threadId string, limit int) ([]*entity.ChatMessage, error)
	CountByThreadId(ctx context.Context, threadId string) (int64, error)
}
