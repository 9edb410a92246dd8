package contract

import (
	"context"
	"time"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredAttachmentChunk pairs a chunk with similarity and source filename.
type ScoredAttachmentChunk struct {
	Chunk      *entity.AttachmentChunk
	Filename   string
	Similarity float64
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Attachment, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID, totalChunks int, processedAt time.Time) error
}

type AttachmentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.AttachmentChunk) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AttachmentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteByAttachmentId(ctx context.Context, attachmentId uuid.UUID) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error

	// SearchBySession runs a cosine similarity search over chunks of the
	// session's completed attachments. A nil threshold disables filtering.
	SearchBySession(ctx context.Context, embedding []float32, sessionId uuid.UUID, limit int, threshold *float64) ([]*ScoredAttachmentChunk, error)
}
