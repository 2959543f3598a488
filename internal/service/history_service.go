package service

import (
	"context"

	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/repository/contract"
)

// HistoryService persists completed exchanges to durable message storage.
type HistoryService struct {
	messages contract.ChatMessageRepository
}

func NewHistoryService(messages contract.ChatMessageRepository) *HistoryService {
	return &HistoryService{messages: messages}
}

func (s *HistoryService) RecordExchange(ctx context.Context, threadID, userID, turnID, question, reply string) error {
	return s.messages.CreateBatch(ctx, []*entity.ChatMessage{
		{
			ThreadId: threadID,
			UserId:   userID,
			TurnId:   turnID,
			Role:     entity.MessageRoleUser,
			Content:  question,
		},
		{
			ThreadId: threadID,
			UserId:   userID,
			TurnId:   turnID,
			Role:     entity.MessageRoleAssistant,
			Content:  reply,
		},
	})
}

// RecentExchanges exposes thread history for the monitor dashboard.
func (s *HistoryService) RecentExchanges(ctx context.Context, threadID string, limit int) ([]*entity.ChatMessage, error) {
	return s.messages.GetRecentByThreadId(ctx, threadID, limit)
}
