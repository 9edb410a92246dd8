package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type AttachmentChunk struct {
	Id           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AttachmentId uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_attachment_chunks_attachment_chunk"`
	SessionId    uuid.UUID         `gorm:"type:uuid;not null;index"`
	ChunkIndex   int               `gorm:"not null;uniqueIndex:idx_attachment_chunks_attachment_chunk"`
	Text         string            `gorm:"type:text;not null"`
	TokenCount   int               `gorm:""`
	Embedding    pgvector.Vector   `gorm:"type:vector(768)"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt    time.Time         `gorm:"autoCreateTime"`

	Attachment Attachment  `gorm:"foreignKey:AttachmentId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Session    ChatSession `gorm:"foreignKey:SessionId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (AttachmentChunk) TableName() string {
	return "attachment_chunks"
}
