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

type KBDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KBMapper
}

func NewKBDocumentRepository(db *gorm.DB) contract.KBDocumentRepository {
	return &KBDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewKBMapper(),
	}
}

func (r *KBDocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KBDocumentRepositoryImpl) Create(ctx context.Context, doc *entity.KBDocument) error {
	m := r.mapper.DocumentToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.DocumentToEntity(m)
	return nil
}

func (r *KBDocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KBDocument, error) {
	var m model.KBDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.DocumentToEntity(&m), nil
}

func (r *KBDocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KBDocument, error) {
	var models []*model.KBDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.KBDocument, len(models))
	for i, m := range models {
		entities[i] = r.mapper.DocumentToEntity(m)
	}
	return entities, nil
}

func (r *KBDocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KBDocument{}, id).Error
}

func (r *KBDocumentRepositoryImpl) DeleteByKBId(ctx context.Context, kbId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("kb_id = ?", kbId).
		Delete(&model.KBDocument{}).Error
}

func (r *KBDocumentRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.KBDocument{}).
		Where("id = ?", id).
		Update("status", status).Error
}
