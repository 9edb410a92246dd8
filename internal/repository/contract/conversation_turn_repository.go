package contract

import (
	"context"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredTurn pairs a turn with its cosine similarity to a query vector.
type ScoredTurn struct {
	Turn       *entity.ConversationTurn
	Similarity float64
}

type ConversationTurnRepository interface {
	Create(ctx context.Context, turn *entity.ConversationTurn) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error

	// RecentTurns returns the last `limit` turns of a session in
	// chronological order (oldest first).
	RecentTurns(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ConversationTurn, error)

	// SearchSimilarExcludingRecent runs a cosine similarity search over the
	// session's turns, skipping the `excludeRecent` most recent ones so the
	// recent window and the retrieved history never overlap. A nil threshold
	// disables similarity filtering; otherwise it is an inclusive floor.
	SearchSimilarExcludingRecent(ctx context.Context, embedding []float32, sessionId uuid.UUID, excludeRecent, limit int, threshold *float64) ([]*ScoredTurn, error)
}
