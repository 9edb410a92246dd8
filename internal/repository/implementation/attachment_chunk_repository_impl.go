package implementation

import (
	"context"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/mapper"
	"rag-chat-be/internal/model"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type AttachmentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AttachmentMapper
}

func NewAttachmentChunkRepository(db *gorm.DB) contract.AttachmentChunkRepository {
	return &AttachmentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewAttachmentMapper(),
	}
}

func (r *AttachmentChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AttachmentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.AttachmentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.AttachmentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ChunkToModel(c)
	}
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ChunkToEntity(m)
	}
	return nil
}

func (r *AttachmentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AttachmentChunk, error) {
	var models []*model.AttachmentChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.AttachmentChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChunkToEntity(m)
	}
	return entities, nil
}

func (r *AttachmentChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.AttachmentChunk{}).Count(&count).Error
	return count, err
}

func (r *AttachmentChunkRepositoryImpl) DeleteByAttachmentId(ctx context.Context, attachmentId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("attachment_id = ?", attachmentId).
		Delete(&model.AttachmentChunk{}).Error
}

func (r *AttachmentChunkRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Delete(&model.AttachmentChunk{}).Error
}

func (r *AttachmentChunkRepositoryImpl) SearchBySession(
	ctx context.Context,
	embedding []float32,
	sessionId uuid.UUID,
	limit int,
	threshold *float64,
) ([]*contract.ScoredAttachmentChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type row struct {
		model.AttachmentChunk
		Filename   string
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(embedding)

	// Only chunks of fully processed attachments are searchable; a failed
	// or in-flight upload contributes nothing.
	query := r.db.WithContext(ctx).
		Table("attachment_chunks").
		Select("attachment_chunks.*, a.filename AS filename, 1 - (attachment_chunks.embedding <=> ?) AS similarity", queryVector).
		Joins("JOIN attachments a ON a.id = attachment_chunks.attachment_id").
		Where("attachment_chunks.session_id = ?", sessionId).
		Where("a.status = ?", entity.IngestStatusCompleted)

	if threshold != nil {
		query = query.Where("1 - (attachment_chunks.embedding <=> ?) >= ?", queryVector, *threshold)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredAttachmentChunk, len(rows))
	for i, res := range rows {
		scored[i] = &contract.ScoredAttachmentChunk{
			Chunk:      r.mapper.ChunkToEntity(&res.AttachmentChunk),
			Filename:   res.Filename,
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
