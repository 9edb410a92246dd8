package unitofwork

import (
	"context"

	"rag-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ConversationTurnRepository() contract.ConversationTurnRepository
	KnowledgeBaseRepository() contract.KnowledgeBaseRepository
	KBDocumentRepository() contract.KBDocumentRepository
	KBChunkRepository() contract.KBChunkRepository
	SessionKBRepository() contract.SessionKBRepository
	AttachmentRepository() contract.AttachmentRepository
	AttachmentChunkRepository() contract.AttachmentChunkRepository
}
