package mapper

import (
	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/model"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) ToEntity(k *model.KnowledgeEmbedding) *entity.KnowledgeChunk {
	if k == nil {
		return nil
	}
	return &entity.KnowledgeChunk{
		Id:         k.Id,
		Namespace:  k.Namespace,
		SectionId:  k.SectionId,
		Title:      k.Title,
		Document:   k.Document,
		ChunkIndex: k.ChunkIndex,
		CreatedAt:  k.CreatedAt,
		UpdatedAt:  k.UpdatedAt,
	}
}
