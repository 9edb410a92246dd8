package service

import (
	"context"
	"time"

	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/specification"
	"rag-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IKnowledgeBaseService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateKBRequest) (*dto.CreateKBResponse, error)
	Show(ctx context.Context, userId, id uuid.UUID) (*dto.ShowKBResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowKBResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateKBRequest) (*dto.ShowKBResponse, error)
	Delete(ctx context.Context, userId, id uuid.UUID) error

	AttachToSession(ctx context.Context, sessionId, kbId uuid.UUID) (*dto.AttachKBResponse, error)
	DetachFromSession(ctx context.Context, sessionId, kbId uuid.UUID) error
	ListAttached(ctx context.Context, sessionId uuid.UUID) ([]*dto.AttachedKBResponse, error)

	ListDocuments(ctx context.Context, kbId uuid.UUID) ([]*dto.DocumentResponse, error)
	DeleteDocument(ctx context.Context, kbId, documentId uuid.UUID) error
}

type knowledgeBaseService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewKnowledgeBaseService(uowFactory unitofwork.RepositoryFactory) IKnowledgeBaseService {
	return &knowledgeBaseService{
		uowFactory: uowFactory,
	}
}

func (s *knowledgeBaseService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateKBRequest) (*dto.CreateKBResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	now := time.Now()
	kb := entity.KnowledgeBase{
		Id:          uuid.New(),
		UserId:      userId,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uow.KnowledgeBaseRepository().Create(ctx, &kb); err != nil {
		return nil, err
	}

	return &dto.CreateKBResponse{Id: kb.Id}, nil
}

func (s *knowledgeBaseService) Show(ctx context.Context, userId, id uuid.UUID) (*dto.ShowKBResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	kb, err := uow.KnowledgeBaseRepository().FindOne(ctx, specification.ByID{ID: id}, specification.OwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if kb == nil {
		return nil, apperror.NotFoundf("knowledge base %s not found", id)
	}

	return kbToResponse(kb), nil
}

func (s *knowledgeBaseService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ShowKBResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	kbs, err := uow.KnowledgeBaseRepository().FindAll(ctx, specification.OwnedBy{UserID: userId}, specification.OrderBy{Clause: "created_at DESC"})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ShowKBResponse, 0, len(kbs))
	for _, kb := range kbs {
		res = append(res, kbToResponse(kb))
	}
	return res, nil
}

func (s *knowledgeBaseService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateKBRequest) (*dto.ShowKBResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	kb, err := uow.KnowledgeBaseRepository().FindOne(ctx, specification.ByID{ID: req.Id}, specification.OwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}
	if kb == nil {
		return nil, apperror.NotFoundf("knowledge base %s not found", req.Id)
	}

	kb.Title = req.Title
	kb.Description = req.Description
	kb.UpdatedAt = time.Now()
	if err := uow.KnowledgeBaseRepository().Update(ctx, kb); err != nil {
		return nil, err
	}

	return kbToResponse(kb), nil
}

// Delete removes the knowledge base with its documents, chunks and session
// links in one transaction.
func (s *knowledgeBaseService) Delete(ctx context.Context, userId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	kb, err := uow.KnowledgeBaseRepository().FindOne(ctx, specification.ByID{ID: id}, specification.OwnedBy{UserID: userId})
	if err != nil {
		return err
	}
	if kb == nil {
		return apperror.NotFoundf("knowledge base %s not found", id)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.KBChunkRepository().DeleteByKBId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.KBDocumentRepository().DeleteByKBId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.SessionKBRepository().DeleteByKBId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.KnowledgeBaseRepository().Delete(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

func (s *knowledgeBaseService) AttachToSession(ctx context.Context, sessionId, kbId uuid.UUID) (*dto.AttachKBResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFoundf("chat session %s not found", sessionId)
	}

	kb, err := uow.KnowledgeBaseRepository().FindOne(ctx, specification.ByID{ID: kbId})
	if err != nil {
		return nil, err
	}
	if kb == nil {
		return nil, apperror.NotFoundf("knowledge base %s not found", kbId)
	}

	existing, err := uow.SessionKBRepository().FindOne(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.ByKBID{KBID: kbId},
	)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflictf("knowledge base %q is already attached to this chat", kb.Title)
	}

	link := entity.SessionKB{
		Id:         uuid.New(),
		SessionId:  sessionId,
		KbId:       kbId,
		AttachedAt: time.Now(),
	}
	if err := uow.SessionKBRepository().Create(ctx, &link); err != nil {
		return nil, err
	}

	return &dto.AttachKBResponse{
		SessionId:  sessionId,
		KbId:       kbId,
		KbTitle:    kb.Title,
		AttachedAt: link.AttachedAt,
	}, nil
}

func (s *knowledgeBaseService) DetachFromSession(ctx context.Context, sessionId, kbId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	link, err := uow.SessionKBRepository().FindOne(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.ByKBID{KBID: kbId},
	)
	if err != nil {
		return err
	}
	if link == nil {
		return apperror.NotFoundf("knowledge base is not attached to this chat")
	}

	return uow.SessionKBRepository().DeleteLink(ctx, sessionId, kbId)
}

func (s *knowledgeBaseService) ListAttached(ctx context.Context, sessionId uuid.UUID) ([]*dto.AttachedKBResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFoundf("chat session %s not found", sessionId)
	}

	links, err := uow.SessionKBRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Clause: "attached_at DESC"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.AttachedKBResponse, 0, len(links))
	for _, link := range links {
		kb, err := uow.KnowledgeBaseRepository().FindOne(ctx, specification.ByID{ID: link.KbId})
		if err != nil {
			return nil, err
		}
		if kb == nil {
			continue
		}
		res = append(res, &dto.AttachedKBResponse{
			KbId:       link.KbId,
			Title:      kb.Title,
			AttachedAt: link.AttachedAt,
		})
	}
	return res, nil
}

func (s *knowledgeBaseService) ListDocuments(ctx context.Context, kbId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	kb, err := uow.KnowledgeBaseRepository().FindOne(ctx, specification.ByID{ID: kbId})
	if err != nil {
		return nil, err
	}
	if kb == nil {
		return nil, apperror.NotFoundf("knowledge base %s not found", kbId)
	}

	docs, err := uow.KBDocumentRepository().FindAll(ctx,
		specification.ByKBID{KBID: kbId},
		specification.OrderBy{Clause: "created_at DESC"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		res = append(res, &dto.DocumentResponse{
			Id:        doc.Id,
			KbId:      doc.KbId,
			Filename:  doc.Filename,
			MimeType:  doc.MimeType,
			ByteSize:  doc.ByteSize,
			Status:    doc.Status,
			CreatedAt: doc.CreatedAt,
		})
	}
	return res, nil
}

// DeleteDocument removes a document and all of its chunks in one
// transaction.
func (s *knowledgeBaseService) DeleteDocument(ctx context.Context, kbId, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.KBDocumentRepository().FindOne(ctx, specification.ByID{ID: documentId}, specification.ByKBID{KBID: kbId})
	if err != nil {
		return err
	}
	if doc == nil {
		return apperror.NotFoundf("document %s not found", documentId)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.KBChunkRepository().DeleteByDocumentId(ctx, documentId); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.KBDocumentRepository().Delete(ctx, documentId); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

func kbToResponse(kb *entity.KnowledgeBase) *dto.ShowKBResponse {
	return &dto.ShowKBResponse{
		Id:          kb.Id,
		Title:       kb.Title,
		Description: kb.Description,
		CreatedAt:   kb.CreatedAt,
		UpdatedAt:   kb.UpdatedAt,
	}
}
