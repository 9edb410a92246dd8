package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"rag-chat-be/internal/apperror"
	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/specification"
	"rag-chat-be/internal/repository/unitofwork"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/ingestion"

	"github.com/google/uuid"
)

type IIngestionService interface {
	// IngestKBDocument registers the upload and processes it in the
	// background. The caller only waits for the parent record; processing
	// outcomes surface through the document status.
	IngestKBDocument(ctx context.Context, kbId, uploaderId uuid.UUID, tmpPath, originalFilename string, byteSize int64) (*dto.IngestDocumentResponse, error)

	// IngestAttachment does the same for ephemeral session uploads.
	IngestAttachment(ctx context.Context, sessionId, uploaderId uuid.UUID, tmpPath, originalFilename string, byteSize int64) (*dto.UploadAttachmentResponse, error)
}

type ingestionService struct {
	uowFactory        unitofwork.RepositoryFactory
	processor         *ingestion.Processor
	embeddingProvider embedding.EmbeddingProvider
	log               logger.ILogger

	// dispatch runs background processing; replaced in tests to run inline.
	dispatch func(fn func())
}

func NewIngestionService(
	uowFactory unitofwork.RepositoryFactory,
	processor *ingestion.Processor,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IIngestionService {
	return &ingestionService{
		uowFactory:        uowFactory,
		processor:         processor,
		embeddingProvider: embeddingProvider,
		log:               log,
		dispatch:          func(fn func()) { go fn() },
	}
}

func (s *ingestionService) IngestKBDocument(ctx context.Context, kbId, uploaderId uuid.UUID, tmpPath, originalFilename string, byteSize int64) (*dto.IngestDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	kb, err := uow.KnowledgeBaseRepository().FindOne(ctx, specification.ByID{ID: kbId})
	if err != nil {
		s.removeTemp(tmpPath)
		return nil, err
	}
	if kb == nil {
		s.removeTemp(tmpPath)
		return nil, apperror.NotFoundf("knowledge base %s not found", kbId)
	}

	existing, err := uow.KBDocumentRepository().FindOne(ctx,
		specification.ByKBID{KBID: kbId},
		specification.ByFilename{Filename: originalFilename},
	)
	if err != nil {
		s.removeTemp(tmpPath)
		return nil, err
	}
	if existing != nil {
		s.removeTemp(tmpPath)
		return nil, apperror.Conflictf("file %q already exists in this knowledge base", originalFilename)
	}

	contentHash, err := hashFile(tmpPath)
	if err != nil {
		s.removeTemp(tmpPath)
		return nil, err
	}

	// The parent record exists before chunking starts so chunk rows can
	// reference it.
	doc := entity.KBDocument{
		Id:         uuid.New(),
		KbId:       kbId,
		UploadedBy: uploaderId,
		Filename:   originalFilename,
		MimeType:   ingestion.DetectMimeType(originalFilename),
		TextSha256: contentHash,
		ByteSize:   byteSize,
		Status:     entity.IngestStatusProcessing,
		Metadata:   map[string]interface{}{"original_filename": originalFilename},
		CreatedAt:  time.Now(),
	}
	if err := uow.KBDocumentRepository().Create(ctx, &doc); err != nil {
		s.removeTemp(tmpPath)
		return nil, err
	}

	s.dispatch(func() {
		s.processKBDocument(context.Background(), doc.Id, kbId, tmpPath, originalFilename)
	})

	return &dto.IngestDocumentResponse{
		DocumentId: doc.Id,
		Filename:   originalFilename,
		Status:     doc.Status,
	}, nil
}

func (s *ingestionService) processKBDocument(ctx context.Context, documentId, kbId uuid.UUID, tmpPath, originalFilename string) {
	defer s.removeTemp(tmpPath)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chunks, err := s.processor.Process(ctx, tmpPath, originalFilename)
	if err == nil && len(chunks) == 0 {
		err = apperror.ExtractionFailuref("no content could be extracted from %q", originalFilename)
	}
	if err != nil {
		s.markDocumentFailed(ctx, uow, documentId, originalFilename, err)
		return
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embeddingProvider.GenerateBatch(texts, "RETRIEVAL_DOCUMENT")
	if err != nil {
		s.markDocumentFailed(ctx, uow, documentId, originalFilename, fmt.Errorf("batch embedding: %w", err))
		return
	}

	entities := make([]*entity.KBChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = &entity.KBChunk{
			Id:         uuid.New(),
			KbId:       kbId,
			DocumentId: documentId,
			ChunkIndex: i,
			Text:       c.Text,
			TokenCount: ingestion.EstimateTokens(c.Text),
			Embedding:  vectors[i],
			Metadata:   c.Metadata.ToMap(),
			Indexed:    true,
			CreatedAt:  time.Now(),
		}
	}

	// Chunk rows and the completed status land together or not at all.
	if err := uow.Begin(ctx); err != nil {
		s.markDocumentFailed(ctx, uow, documentId, originalFilename, err)
		return
	}
	if err := uow.KBChunkRepository().CreateBulk(ctx, entities); err != nil {
		_ = uow.Rollback()
		s.markDocumentFailed(ctx, uow, documentId, originalFilename, err)
		return
	}
	if err := uow.KBDocumentRepository().UpdateStatus(ctx, documentId, entity.IngestStatusCompleted); err != nil {
		_ = uow.Rollback()
		s.markDocumentFailed(ctx, uow, documentId, originalFilename, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.markDocumentFailed(ctx, uow, documentId, originalFilename, err)
		return
	}

	s.log.Info("Ingestion", "document ingested", map[string]interface{}{
		"document_id": documentId.String(),
		"filename":    originalFilename,
		"chunk_count": len(entities),
	})
}

func (s *ingestionService) IngestAttachment(ctx context.Context, sessionId, uploaderId uuid.UUID, tmpPath, originalFilename string, byteSize int64) (*dto.UploadAttachmentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		s.removeTemp(tmpPath)
		return nil, err
	}
	if session == nil {
		s.removeTemp(tmpPath)
		return nil, apperror.NotFoundf("chat session %s not found", sessionId)
	}

	existing, err := uow.AttachmentRepository().FindOne(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.ByFilename{Filename: originalFilename},
	)
	if err != nil {
		s.removeTemp(tmpPath)
		return nil, err
	}
	if existing != nil {
		s.removeTemp(tmpPath)
		return nil, apperror.Conflictf("file %q is already attached to this chat", originalFilename)
	}

	attachment := entity.Attachment{
		Id:         uuid.New(),
		SessionId:  sessionId,
		UploadedBy: uploaderId,
		Filename:   originalFilename,
		MimeType:   ingestion.DetectMimeType(originalFilename),
		ByteSize:   byteSize,
		Status:     entity.IngestStatusProcessing,
		Metadata:   map[string]interface{}{"original_filename": originalFilename},
		UploadedAt: time.Now(),
	}
	if err := uow.AttachmentRepository().Create(ctx, &attachment); err != nil {
		s.removeTemp(tmpPath)
		return nil, err
	}

	s.dispatch(func() {
		s.processAttachment(context.Background(), attachment.Id, sessionId, tmpPath, originalFilename)
	})

	return &dto.UploadAttachmentResponse{
		Id:        attachment.Id,
		SessionId: sessionId,
		Filename:  originalFilename,
		Status:    attachment.Status,
	}, nil
}

func (s *ingestionService) processAttachment(ctx context.Context, attachmentId, sessionId uuid.UUID, tmpPath, originalFilename string) {
	defer s.removeTemp(tmpPath)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chunks, err := s.processor.Process(ctx, tmpPath, originalFilename)
	if err == nil && len(chunks) == 0 {
		err = apperror.ExtractionFailuref("no content could be extracted from %q", originalFilename)
	}
	if err != nil {
		s.markAttachmentFailed(ctx, uow, attachmentId, originalFilename, err)
		return
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embeddingProvider.GenerateBatch(texts, "RETRIEVAL_DOCUMENT")
	if err != nil {
		s.markAttachmentFailed(ctx, uow, attachmentId, originalFilename, fmt.Errorf("batch embedding: %w", err))
		return
	}

	entities := make([]*entity.AttachmentChunk, len(chunks))
	for i, c := range chunks {
		entities[i] = &entity.AttachmentChunk{
			Id:           uuid.New(),
			AttachmentId: attachmentId,
			SessionId:    sessionId,
			ChunkIndex:   i,
			Text:         c.Text,
			TokenCount:   ingestion.EstimateTokens(c.Text),
			Embedding:    vectors[i],
			Metadata:     c.Metadata.ToMap(),
			CreatedAt:    time.Now(),
		}
	}

	if err := uow.Begin(ctx); err != nil {
		s.markAttachmentFailed(ctx, uow, attachmentId, originalFilename, err)
		return
	}
	if err := uow.AttachmentChunkRepository().CreateBulk(ctx, entities); err != nil {
		_ = uow.Rollback()
		s.markAttachmentFailed(ctx, uow, attachmentId, originalFilename, err)
		return
	}
	if err := uow.AttachmentRepository().MarkCompleted(ctx, attachmentId, len(entities), time.Now()); err != nil {
		_ = uow.Rollback()
		s.markAttachmentFailed(ctx, uow, attachmentId, originalFilename, err)
		return
	}
	if err := uow.Commit(); err != nil {
		s.markAttachmentFailed(ctx, uow, attachmentId, originalFilename, err)
		return
	}

	s.log.Info("Ingestion", "attachment ingested", map[string]interface{}{
		"attachment_id": attachmentId.String(),
		"filename":      originalFilename,
		"chunk_count":   len(entities),
	})
}

func (s *ingestionService) markDocumentFailed(ctx context.Context, uow unitofwork.UnitOfWork, documentId uuid.UUID, filename string, cause error) {
	s.log.Error("Ingestion", "document ingestion failed", map[string]interface{}{
		"document_id": documentId.String(),
		"filename":    filename,
		"error":       cause.Error(),
	})
	if err := uow.KBDocumentRepository().UpdateStatus(ctx, documentId, entity.IngestStatusFailed); err != nil {
		s.log.Error("Ingestion", "failed to mark document as failed", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
	}
}

func (s *ingestionService) markAttachmentFailed(ctx context.Context, uow unitofwork.UnitOfWork, attachmentId uuid.UUID, filename string, cause error) {
	s.log.Error("Ingestion", "attachment ingestion failed", map[string]interface{}{
		"attachment_id": attachmentId.String(),
		"filename":      filename,
		"error":         cause.Error(),
	})
	if err := uow.AttachmentRepository().MarkFailed(ctx, attachmentId); err != nil {
		s.log.Error("Ingestion", "failed to mark attachment as failed", map[string]interface{}{
			"attachment_id": attachmentId.String(),
			"error":         err.Error(),
		})
	}
}

func (s *ingestionService) removeTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("Ingestion", "failed to remove temp file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
