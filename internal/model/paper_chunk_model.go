package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type PaperChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SourceFile     string          `gorm:"type:text;not null;index"`
	Title          string          `gorm:"type:text"`
	Page           int             `gorm:"default:0"`
	ChunkIndex     int             `gorm:"default:0"` // 0-based index for ordering within a page
	Content        string          `gorm:"type:text"`
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // jina-embeddings-v2-base-en uses 768 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (PaperChunk) TableName() string {
	return "paper_chunks"
}
