package implementation

import (
	"context"

	"gorm.io/gorm"

	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/mapper"
	"chat-agent-be/internal/model"
	"chat-agent-be/internal/repository/contract"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) Create(ctx context.Context, message *entity.ChatMessage) error {
	m := r.mapper.ToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChatMessageRepositoryImpl) CreateBatch(ctx context.Context, messages []*entity.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	models := make([]*model.ChatMessage, len(messages))
	for i, msg := range messages {
		models[i] = r.mapper.ToModel(msg)
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (r *ChatMessageRepositoryImpl) GetRecentByThreadId(ctx context.Context, threadId string, limit int) ([]*entity.ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []*model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadId).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	// Reverse so callers get chronological order.
	entities := make([]*entity.ChatMessage, len(models))
	for i, m := range models {
		entities[len(models)-1-i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ChatMessageRepositoryImpl) CountByThreadId(ctx context.Context, threadId string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ChatMessage{}).
		Where("thread_id = ?", threadId).
		Count(&count).Error
	return count, err
}
