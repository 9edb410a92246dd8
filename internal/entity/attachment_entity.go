package entity

import (
	"time"

	"github.com/google/uuid"
)

type Attachment struct {
	Id          uuid.UUID
	SessionId   uuid.UUID
	UploadedBy  uuid.UUID
	Filename    string
	MimeType    string
	ByteSize    int64
	TotalChunks int
	Status      string
	Metadata    map[string]interface{}
	UploadedAt  time.Time
	ProcessedAt *time.Time
}

type AttachmentChunk struct {
	Id           uuid.UUID
	AttachmentId uuid.UUID
	SessionId    uuid.UUID
	ChunkIndex   int
	Text         string
	TokenCount   int
	Embedding    []float32
	Metadata     map[string]interface{}
	CreatedAt    time.Time
}
