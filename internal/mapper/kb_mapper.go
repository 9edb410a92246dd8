package mapper

import (
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KBMapper struct{}

func NewKBMapper() *KBMapper {
	return &KBMapper{}
}

func (m *KBMapper) KnowledgeBaseToEntity(kb *model.KnowledgeBase) *entity.KnowledgeBase {
	if kb == nil {
		return nil
	}
	return &entity.KnowledgeBase{
		Id:          kb.Id,
		UserId:      kb.UserId,
		Title:       kb.Title,
		Description: kb.Description,
		CreatedAt:   kb.CreatedAt,
		UpdatedAt:   kb.UpdatedAt,
	}
}

func (m *KBMapper) KnowledgeBaseToModel(kb *entity.KnowledgeBase) *model.KnowledgeBase {
	if kb == nil {
		return nil
	}
	return &model.KnowledgeBase{
		Id:          kb.Id,
		UserId:      kb.UserId,
		Title:       kb.Title,
		Description: kb.Description,
		CreatedAt:   kb.CreatedAt,
		UpdatedAt:   kb.UpdatedAt,
	}
}

func (m *KBMapper) DocumentToEntity(d *model.KBDocument) *entity.KBDocument {
	if d == nil {
		return nil
	}
	return &entity.KBDocument{
		Id:         d.Id,
		KbId:       d.KbId,
		UploadedBy: d.UploadedBy,
		Filename:   d.Filename,
		MimeType:   d.MimeType,
		TextSha256: d.TextSha256,
		ByteSize:   d.ByteSize,
		Status:     d.Status,
		Metadata:   d.Metadata,
		CreatedAt:  d.CreatedAt,
	}
}

func (m *KBMapper) DocumentToModel(d *entity.KBDocument) *model.KBDocument {
	if d == nil {
		return nil
	}
	return &model.KBDocument{
		Id:         d.Id,
		KbId:       d.KbId,
		UploadedBy: d.UploadedBy,
		Filename:   d.Filename,
		MimeType:   d.MimeType,
		TextSha256: d.TextSha256,
		ByteSize:   d.ByteSize,
		Status:     d.Status,
		Metadata:   datatypes.JSONMap(d.Metadata),
		CreatedAt:  d.CreatedAt,
	}
}

func (m *KBMapper) ChunkToEntity(c *model.KBChunk) *entity.KBChunk {
	if c == nil {
		return nil
	}
	return &entity.KBChunk{
		Id:         c.Id,
		KbId:       c.KbId,
		DocumentId: c.DocumentId,
		ChunkIndex: c.ChunkIndex,
		Text:       c.Text,
		TokenCount: c.TokenCount,
		Embedding:  c.Embedding.Slice(),
		Metadata:   c.Metadata,
		Indexed:    c.Indexed,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *KBMapper) ChunkToModel(c *entity.KBChunk) *model.KBChunk {
	if c == nil {
		return nil
	}
	return &model.KBChunk{
		Id:         c.Id,
		KbId:       c.KbId,
		DocumentId: c.DocumentId,
		ChunkIndex: c.ChunkIndex,
		Text:       c.Text,
		TokenCount: c.TokenCount,
		Embedding:  pgvector.NewVector(c.Embedding),
		Metadata:   datatypes.JSONMap(c.Metadata),
		Indexed:    c.Indexed,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *KBMapper) SessionKBToEntity(l *model.SessionKB) *entity.SessionKB {
	if l == nil {
		return nil
	}
	return &entity.SessionKB{
		Id:         l.Id,
		SessionId:  l.SessionId,
		KbId:       l.KbId,
		AttachedAt: l.AttachedAt,
	}
}

func (m *KBMapper) SessionKBToModel(l *entity.SessionKB) *model.SessionKB {
	if l == nil {
		return nil
	}
	return &model.SessionKB{
		Id:         l.Id,
		SessionId:  l.SessionId,
		KbId:       l.KbId,
		AttachedAt: l.AttachedAt,
	}
}
