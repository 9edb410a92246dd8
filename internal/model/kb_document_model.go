package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// KBDocument carries a filename unique within its KB; duplicate uploads are
// rejected before ingestion starts.
type KBDocument struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	KbId       uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_kb_documents_kb_filename"`
	UploadedBy uuid.UUID         `gorm:"type:uuid;not null"`
	Filename   string            `gorm:"type:varchar(512);not null;uniqueIndex:idx_kb_documents_kb_filename"`
	MimeType   string            `gorm:"type:varchar(100)"`
	TextSha256 string            `gorm:"type:varchar(64);index"`
	ByteSize   int64             `gorm:""`
	Status     string            `gorm:"type:varchar(20);not null;default:'processing'"` // processing | completed | failed
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`

	KnowledgeBase KnowledgeBase `gorm:"foreignKey:KbId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (KBDocument) TableName() string {
	return "kb_documents"
}
