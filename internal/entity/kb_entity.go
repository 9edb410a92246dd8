package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	IngestStatusPending    = "pending"
	IngestStatusProcessing = "processing"
	IngestStatusCompleted  = "completed"
	IngestStatusFailed     = "failed"
)

type KnowledgeBase struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type KBDocument struct {
	Id         uuid.UUID
	KbId       uuid.UUID
	UploadedBy uuid.UUID
	Filename   string
	MimeType   string
	TextSha256 string
	ByteSize   int64
	Status     string
	Metadata   map[string]interface{}
	CreatedAt  time.Time
}

type KBChunk struct {
	Id         uuid.UUID
	KbId       uuid.UUID
	DocumentId uuid.UUID
	ChunkIndex int
	Text       string
	TokenCount int
	Embedding  []float32
	Metadata   map[string]interface{}
	Indexed    bool
	CreatedAt  time.Time
}

type SessionKB struct {
	Id         uuid.UUID
	SessionId  uuid.UUID
	KbId       uuid.UUID
	AttachedAt time.Time
}
