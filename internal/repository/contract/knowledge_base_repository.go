package contract

import (
	"context"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type KnowledgeBaseRepository interface {
	Create(ctx context.Context, kb *entity.KnowledgeBase) error
	Update(ctx context.Context, kb *entity.KnowledgeBase) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeBase, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeBase, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type KBDocumentRepository interface {
	Create(ctx context.Context, doc *entity.KBDocument) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KBDocument, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KBDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByKBId(ctx context.Context, kbId uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type SessionKBRepository interface {
	Create(ctx context.Context, link *entity.SessionKB) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionKB, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionKB, error)
	DeleteLink(ctx context.Context, sessionId, kbId uuid.UUID) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	DeleteByKBId(ctx context.Context, kbId uuid.UUID) error
}
