package retrieval

import (
	"context"
	"fmt"

	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/internal/repository/contract"
	"chat-agent-be/pkg/agent/state"
	"chat-agent-be/pkg/embedding"
)

// Retriever fetches candidate passages for a query against the knowledge
// index. The core treats the index as an opaque ranked-retrieval oracle.
type Retriever interface {
	Retrieve(ctx context.Context, query string, namespaces []string) ([]state.Document, error)
}

// VectorRetriever embeds the query and runs a cosine similarity search over
// the pgvector-backed knowledge base.
type VectorRetriever struct {
	embedder  embedding.EmbeddingProvider
	repo      contract.KnowledgeEmbeddingRepository
	topK      int
	threshold float64
	log       logger.ILogger
}

func NewVectorRetriever(
	embedder embedding.EmbeddingProvider,
	repo contract.KnowledgeEmbeddingRepository,
	topK int,
	threshold float64,
	log logger.ILogger,
) *VectorRetriever {
	if topK <= 0 {
		topK = 5
	}
	return &VectorRetriever{
		embedder:  embedder,
		repo:      repo,
		topK:      topK,
		threshold: threshold,
		log:       log,
	}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string, namespaces []string) ([]state.Document, error) {
	emb, err := r.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	scored, err := r.repo.SearchSimilarWithScore(ctx, emb.Embedding.Values, r.topK, namespaces, r.threshold)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	docs := make([]state.Document, 0, len(scored))
	for _, s := range scored {
		docs = append(docs, state.Document{
			Content:         s.Chunk.Document,
			SourceNamespace: s.Chunk.Namespace,
			SectionID:       s.Chunk.SectionId,
			Title:           s.Chunk.Title,
			Score:           s.Similarity,
		})
	}

	r.log.Debug("retrieval", "vector search completed", map[string]interface{}{
		"query":      query,
		"namespaces": namespaces,
		"hits":       len(docs),
	})

	return docs, nil
}
