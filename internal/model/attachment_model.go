package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Attachment is an ephemeral, session-scoped upload. Its status field is the
// only way ingestion outcomes are observable by the caller.
type Attachment struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId   uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_attachments_session_filename"`
	UploadedBy  uuid.UUID         `gorm:"type:uuid;not null"`
	Filename    string            `gorm:"type:varchar(512);not null;uniqueIndex:idx_attachments_session_filename"`
	MimeType    string            `gorm:"type:varchar(100)"`
	ByteSize    int64             `gorm:""`
	TotalChunks int               `gorm:"not null;default:0"`
	Status      string            `gorm:"type:varchar(20);not null;default:'pending'"` // pending | processing | completed | failed
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	UploadedAt  time.Time         `gorm:"autoCreateTime"`
	ProcessedAt *time.Time        `gorm:""`

	Session ChatSession `gorm:"foreignKey:SessionId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Attachment) TableName() string {
	return "attachments"
}
