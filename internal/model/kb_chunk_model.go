package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// KBChunk rows are immutable once written; re-ingestion creates new rows.
type KBChunk struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	KbId       uuid.UUID         `gorm:"type:uuid;not null;index"`
	DocumentId uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_kb_chunks_document_chunk"`
	ChunkIndex int               `gorm:"not null;uniqueIndex:idx_kb_chunks_document_chunk"`
	Text       string            `gorm:"type:text;not null"`
	TokenCount int               `gorm:""` // word-count estimate, not a tokenizer count
	Embedding  pgvector.Vector   `gorm:"type:vector(768)"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	Indexed    bool              `gorm:"not null;default:false"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`

	KnowledgeBase KnowledgeBase `gorm:"foreignKey:KbId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Document      KBDocument    `gorm:"foreignKey:DocumentId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (KBChunk) TableName() string {
	return "kb_chunks"
}
