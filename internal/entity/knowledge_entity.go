package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeChunk is one embedded slice of the knowledge base. Namespace
// separates corpora (faq, menu, branches) so retrieval can scope a search.
type KnowledgeChunk struct {
	Id         uuid.UUID
	Namespace  string
	SectionId  string
	Title      string
	Document   string
	ChunkIndex int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ScoredKnowledgeChunk pairs a chunk with its cosine similarity to a query.
type ScoredKnowledgeChunk struct {
	Chunk      *KnowledgeChunk
	Similarity float64
}
