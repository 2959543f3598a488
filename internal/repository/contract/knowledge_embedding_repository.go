package contract

import (
	"context"

	"chat-agent-be/internal/entity"
)

type KnowledgeEmbeddingRepository interface {
	Create(ctx context.Context, chunk *entity.KnowledgeChunk, embedding []float32) error
	DeleteByNamespace(ctx context.Context, namespace string) error
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, namespaces []string, threshold float64) ([]*entity.ScoredKnowledgeChunk, error)
}
