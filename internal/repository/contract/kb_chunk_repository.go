package contract

import (
	"context"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredKBChunk pairs a chunk with similarity and its provenance labels.
type ScoredKBChunk struct {
	Chunk      *entity.KBChunk
	KBTitle    string
	Filename   string
	Similarity float64
}

type KBChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.KBChunk) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KBChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	DeleteByKBId(ctx context.Context, kbId uuid.UUID) error

	// SearchAcrossKBs runs a cosine similarity search over the union of the
	// given KBs' chunks, then ranks within each KB and keeps at most
	// `limitPerKB` per KB, so a large corpus cannot crowd out a small one.
	// Empty kbIds returns an empty result without issuing a query. A nil
	// threshold disables similarity filtering.
	SearchAcrossKBs(ctx context.Context, embedding []float32, kbIds []uuid.UUID, limitPerKB int, threshold *float64) ([]*ScoredKBChunk, error)
}
