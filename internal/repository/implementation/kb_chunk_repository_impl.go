package implementation

import (
	"context"
	"time"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/mapper"
	"rag-chat-be/internal/model"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type KBChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KBMapper
}

func NewKBChunkRepository(db *gorm.DB) contract.KBChunkRepository {
	return &KBChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewKBMapper(),
	}
}

func (r *KBChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KBChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.KBChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.KBChunk, len(chunks))
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

func (r *KBChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KBChunk, error) {
	var models []*model.KBChunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.KBChunk, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChunkToEntity(m)
	}
	return entities, nil
}

func (r *KBChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.KBChunk{}).Count(&count).Error
	return count, err
}

func (r *KBChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("document_id = ?", documentId).
		Delete(&model.KBChunk{}).Error
}

func (r *KBChunkRepositoryImpl) DeleteByKBId(ctx context.Context, kbId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("kb_id = ?", kbId).
		Delete(&model.KBChunk{}).Error
}

func (r *KBChunkRepositoryImpl) SearchAcrossKBs(
	ctx context.Context,
	embedding []float32,
	kbIds []uuid.UUID,
	limitPerKB int,
	threshold *float64,
) ([]*contract.ScoredKBChunk, error) {
	if len(kbIds) == 0 {
		return []*contract.ScoredKBChunk{}, nil
	}
	if limitPerKB <= 0 {
		limitPerKB = 3
	}

	type row struct {
		Id         uuid.UUID
		KbId       uuid.UUID
		DocumentId uuid.UUID
		ChunkIndex int
		Text       string
		TokenCount int
		Metadata   datatypes.JSONMap
		CreatedAt  time.Time
		Filename   string
		KbTitle    string
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(embedding)

	// ROW_NUMBER over kb_id caps results per KB so no single corpus can
	// dominate the context. Ordering by raw distance inside the window is
	// equivalent to ordering by similarity descending.
	sql := `
		WITH ranked_chunks AS (
			SELECT
				c.id, c.kb_id, c.document_id, c.chunk_index, c.text,
				c.token_count, c.metadata, c.created_at,
				d.filename AS filename,
				k.title AS kb_title,
				1 - (c.embedding <=> ?) AS similarity,
				ROW_NUMBER() OVER (
					PARTITION BY c.kb_id
					ORDER BY c.embedding <=> ?
				) AS rank
			FROM kb_chunks c
			JOIN kb_documents d ON d.id = c.document_id
			JOIN knowledge_bases k ON k.id = c.kb_id
			WHERE c.kb_id IN ?`
	args := []interface{}{queryVector, queryVector, kbIds}

	if threshold != nil {
		sql += ` AND 1 - (c.embedding <=> ?) >= ?`
		args = append(args, queryVector, *threshold)
	}

	sql += `
		)
		SELECT * FROM ranked_chunks
		WHERE rank <= ?
		ORDER BY similarity DESC`
	args = append(args, limitPerKB)

	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKBChunk, len(rows))
	for i, res := range rows {
		scored[i] = &contract.ScoredKBChunk{
			Chunk: &entity.KBChunk{
				Id:         res.Id,
				KbId:       res.KbId,
				DocumentId: res.DocumentId,
				ChunkIndex: res.ChunkIndex,
				Text:       res.Text,
				TokenCount: res.TokenCount,
				Metadata:   res.Metadata,
				CreatedAt:  res.CreatedAt,
			},
			KBTitle:    res.KbTitle,
			Filename:   res.Filename,
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
