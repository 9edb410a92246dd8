package implementation

import (
	"context"
	"errors"

	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/mapper"
	"rag-chat-be/internal/model"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KnowledgeBaseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KBMapper
}

func NewKnowledgeBaseRepository(db *gorm.DB) contract.KnowledgeBaseRepository {
	return &KnowledgeBaseRepositoryImpl{
		db:     db,
		mapper: mapper.NewKBMapper(),
	}
}

func (r *KnowledgeBaseRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KnowledgeBaseRepositoryImpl) Create(ctx context.Context, kb *entity.KnowledgeBase) error {
	m := r.mapper.KnowledgeBaseToModel(kb)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*kb = *r.mapper.KnowledgeBaseToEntity(m)
	return nil
}

func (r *KnowledgeBaseRepositoryImpl) Update(ctx context.Context, kb *entity.KnowledgeBase) error {
	m := r.mapper.KnowledgeBaseToModel(kb)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*kb = *r.mapper.KnowledgeBaseToEntity(m)
	return nil
}

func (r *KnowledgeBaseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeBase, error) {
	var m model.KnowledgeBase
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.KnowledgeBaseToEntity(&m), nil
}

func (r *KnowledgeBaseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeBase, error) {
	var models []*model.KnowledgeBase
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.KnowledgeBase, len(models))
	for i, m := range models {
		entities[i] = r.mapper.KnowledgeBaseToEntity(m)
	}
	return entities, nil
}

func (r *KnowledgeBaseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KnowledgeBase{}, id).Error
}
