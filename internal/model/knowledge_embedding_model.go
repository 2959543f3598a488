package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type KnowledgeEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Namespace      string          `gorm:"type:varchar(64);not null;index"`
	SectionId      string          `gorm:"type:varchar(128);index"`
	Title          string          `gorm:"type:varchar(255)"`
	Document       string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 dimension
	ChunkIndex     int             `gorm:"default:0"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (KnowledgeEmbedding) TableName() string {
	return "knowledge_embeddings"
}
