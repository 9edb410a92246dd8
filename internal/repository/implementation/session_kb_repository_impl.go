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

type SessionKBRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KBMapper
}

func NewSessionKBRepository(db *gorm.DB) contract.SessionKBRepository {
	return &SessionKBRepositoryImpl{
		db:     db,
		mapper: mapper.NewKBMapper(),
	}
}

func (r *SessionKBRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionKBRepositoryImpl) Create(ctx context.Context, link *entity.SessionKB) error {
	m := r.mapper.SessionKBToModel(link)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*link = *r.mapper.SessionKBToEntity(m)
	return nil
}

func (r *SessionKBRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SessionKB, error) {
	var m model.SessionKB
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionKBToEntity(&m), nil
}

func (r *SessionKBRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionKB, error) {
	var models []*model.SessionKB
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SessionKB, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionKBToEntity(m)
	}
	return entities, nil
}

func (r *SessionKBRepositoryImpl) DeleteLink(ctx context.Context, sessionId, kbId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("session_id = ? AND kb_id = ?", sessionId, kbId).
		Delete(&model.SessionKB{}).Error
}

func (r *SessionKBRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Delete(&model.SessionKB{}).Error
}

func (r *SessionKBRepositoryImpl) DeleteByKBId(ctx context.Context, kbId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("kb_id = ?", kbId).
		Delete(&model.SessionKB{}).Error
}
