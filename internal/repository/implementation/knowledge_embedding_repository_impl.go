package implementation

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/mapper"
	"chat-agent-be/internal/model"
	"chat-agent-be/internal/repository/contract"
)

type KnowledgeEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeEmbeddingRepository(db *gorm.DB) contract.KnowledgeEmbeddingRepository {
	return &KnowledgeEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeEmbeddingRepositoryImpl) Create(ctx context.Context, chunk *entity.KnowledgeChunk, embedding []float32) error {
	m := &model.KnowledgeEmbedding{
		Id:             chunk.Id,
		Namespace:      chunk.Namespace,
		SectionId:      chunk.SectionId,
		Title:          chunk.Title,
		Document:       chunk.Document,
		EmbeddingValue: pgvector.NewVector(embedding),
		ChunkIndex:     chunk.ChunkIndex,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chunk = *r.mapper.ToEntity(m)
	return nil
}

func (r *KnowledgeEmbeddingRepositoryImpl) DeleteByNamespace(ctx context.Context, namespace string) error {
	return r.db.WithContext(ctx).
		Where("namespace = ?", namespace).
		Delete(&model.KnowledgeEmbedding{}).Error
}

// SearchSimilarWithScore returns chunks with cosine similarity above the
// threshold. pgvector's <=> operator is cosine distance, so similarity is
// computed as 1 - distance.
func (r *KnowledgeEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, namespaces []string, threshold float64) ([]*entity.ScoredKnowledgeChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.KnowledgeEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("knowledge_embeddings").
		Select("knowledge_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector)

	if len(namespaces) > 0 {
		query = query.Where("namespace IN ?", namespaces)
	}

	err := query.
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredKnowledgeChunk, len(results))
	for i, res := range results {
		scored[i] = &entity.ScoredKnowledgeChunk{
			Chunk:      r.mapper.ToEntity(&res.KnowledgeEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
