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

type ConversationTurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewConversationTurnRepository(db *gorm.DB) contract.ConversationTurnRepository {
	return &ConversationTurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ConversationTurnRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationTurnRepositoryImpl) Create(ctx context.Context, turn *entity.ConversationTurn) error {
	m := r.mapper.TurnToModel(turn)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*turn = *r.mapper.TurnToEntity(m)
	return nil
}

func (r *ConversationTurnRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error) {
	var models []*model.ConversationTurn
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ConversationTurn, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TurnToEntity(m)
	}
	return entities, nil
}

func (r *ConversationTurnRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ConversationTurn{}).Count(&count).Error
	return count, err
}

func (r *ConversationTurnRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Delete(&model.ConversationTurn{}).Error
}

func (r *ConversationTurnRepositoryImpl) RecentTurns(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ConversationTurn, error) {
	if limit <= 0 {
		limit = 10
	}
	var models []*model.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order for presentation.
	entities := make([]*entity.ConversationTurn, len(models))
	for i, m := range models {
		entities[len(models)-1-i] = r.mapper.TurnToEntity(m)
	}
	return entities, nil
}

func (r *ConversationTurnRepositoryImpl) SearchSimilarExcludingRecent(
	ctx context.Context,
	embedding []float32,
	sessionId uuid.UUID,
	excludeRecent, limit int,
	threshold *float64,
) ([]*contract.ScoredTurn, error) {
	if limit <= 0 {
		limit = 3
	}

	type row struct {
		model.ConversationTurn
		Similarity float64
	}
	var rows []row

	queryVector := pgvector.NewVector(embedding)

	// Cosine distance in pgvector: embedding <=> query. Similarity is
	// 1 - distance. Turns without an embedding never match.
	recentIds := r.db.Model(&model.ConversationTurn{}).
		Select("id").
		Where("session_id = ?", sessionId).
		Order("created_at DESC").
		Limit(excludeRecent)

	query := r.db.WithContext(ctx).
		Table("conversation_turns").
		Select("conversation_turns.*, 1 - (embedding <=> ?) AS similarity", queryVector).
		Where("session_id = ?", sessionId).
		Where("embedding IS NOT NULL").
		Where("id NOT IN (?)", recentIds)

	if threshold != nil {
		query = query.Where("1 - (embedding <=> ?) >= ?", queryVector, *threshold)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredTurn, len(rows))
	for i, res := range rows {
		scored[i] = &contract.ScoredTurn{
			Turn:       r.mapper.TurnToEntity(&res.ConversationTurn),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
