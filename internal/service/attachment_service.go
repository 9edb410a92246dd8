package service

import (
	"context"

	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/specification"
	"rag-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IAttachmentService interface {
	List(ctx context.Context, sessionId uuid.UUID) ([]*dto.AttachmentResponse, error)
	Show(ctx context.Context, sessionId, id uuid.UUID) (*dto.AttachmentResponse, error)
	Delete(ctx context.Context, sessionId, id uuid.UUID) error
}

type attachmentService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewAttachmentService(uowFactory unitofwork.RepositoryFactory) IAttachmentService {
	return &attachmentService{
		uowFactory: uowFactory,
	}
}

func (s *attachmentService) List(ctx context.Context, sessionId uuid.UUID) ([]*dto.AttachmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFoundf("chat session %s not found", sessionId)
	}

	attachments, err := uow.AttachmentRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Clause: "uploaded_at DESC"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		res = append(res, attachmentToResponse(a))
	}
	return res, nil
}

func (s *attachmentService) Show(ctx context.Context, sessionId, id uuid.UUID) (*dto.AttachmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	attachment, err := uow.AttachmentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.BySessionID{SessionID: sessionId},
	)
	if err != nil {
		return nil, err
	}
	if attachment == nil {
		return nil, apperror.NotFoundf("attachment %s not found", id)
	}

	return attachmentToResponse(attachment), nil
}

// Delete removes the attachment together with its chunks, so the retrieval
// pipeline can never surface chunks of a deleted upload.
func (s *attachmentService) Delete(ctx context.Context, sessionId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	attachment, err := uow.AttachmentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.BySessionID{SessionID: sessionId},
	)
	if err != nil {
		return err
	}
	if attachment == nil {
		return apperror.NotFoundf("attachment %s not found", id)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := uow.AttachmentChunkRepository().DeleteByAttachmentId(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.AttachmentRepository().Delete(ctx, id); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

func attachmentToResponse(a *entity.Attachment) *dto.AttachmentResponse {
	return &dto.AttachmentResponse{
		Id:          a.Id,
		SessionId:   a.SessionId,
		Filename:    a.Filename,
		MimeType:    a.MimeType,
		ByteSize:    a.ByteSize,
		TotalChunks: a.TotalChunks,
		Status:      a.Status,
		UploadedAt:  a.UploadedAt,
		ProcessedAt: a.ProcessedAt,
	}
}
