package mapper

import (
	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToEntity(c *model.ChatMessage) *entity.ChatMessage {
	if c == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:        c.Id,
		ThreadId:  c.ThreadId,
		UserId:    c.UserId,
		TurnId:    c.TurnId,
		Role:      entity.MessageRole(c.Role),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func (m *ChatMapper) ToModel(c *entity.ChatMessage) *model.ChatMessage {
	if c == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:        c.Id,
		ThreadId:  c.ThreadId,
		UserId:    c.UserId,
		TurnId:    c.TurnId,
		Role:      string(c.Role),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}
