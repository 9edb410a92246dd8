package contract

import (
	"context"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SystemPrompt returns the custom system prompt, or nil when unset.
	SystemPrompt(ctx context.Context, sessionId uuid.UUID) (*string, error)

	// AttachedKBIDs returns the knowledge bases linked to the session,
	// newest attachment first.
	AttachedKBIDs(ctx context.Context, sessionId uuid.UUID) ([]uuid.UUID, error)
}
