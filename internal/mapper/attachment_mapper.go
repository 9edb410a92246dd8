package mapper

import (
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type AttachmentMapper struct{}

func NewAttachmentMapper() *AttachmentMapper {
	return &AttachmentMapper{}
}

func (m *AttachmentMapper) ToEntity(a *model.Attachment) *entity.Attachment {
	if a == nil {
		return nil
	}
	return &entity.Attachment{
		Id:          a.Id,
		SessionId:   a.SessionId,
		UploadedBy:  a.UploadedBy,
		Filename:    a.Filename,
		MimeType:    a.MimeType,
		ByteSize:    a.ByteSize,
		TotalChunks: a.TotalChunks,
		Status:      a.Status,
		Metadata:    a.Metadata,
		UploadedAt:  a.UploadedAt,
		ProcessedAt: a.ProcessedAt,
	}
}

func (m *AttachmentMapper) ToModel(a *entity.Attachment) *model.Attachment {
	if a == nil {
		return nil
	}
	return &model.Attachment{
		Id:          a.Id,
		SessionId:   a.SessionId,
		UploadedBy:  a.UploadedBy,
		Filename:    a.Filename,
		MimeType:    a.MimeType,
		ByteSize:    a.ByteSize,
		TotalChunks: a.TotalChunks,
		Status:      a.Status,
		Metadata:    datatypes.JSONMap(a.Metadata),
		UploadedAt:  a.UploadedAt,
		ProcessedAt: a.ProcessedAt,
	}
}

func (m *AttachmentMapper) ChunkToEntity(c *model.AttachmentChunk) *entity.AttachmentChunk {
	if c == nil {
		return nil
	}
	return &entity.AttachmentChunk{
		Id:           c.Id,
		AttachmentId: c.AttachmentId,
		SessionId:    c.SessionId,
		ChunkIndex:   c.ChunkIndex,
		Text:         c.Text,
		TokenCount:   c.TokenCount,
		Embedding:    c.Embedding.Slice(),
		Metadata:     c.Metadata,
		CreatedAt:    c.CreatedAt,
	}
}

func (m *AttachmentMapper) ChunkToModel(c *entity.AttachmentChunk) *model.AttachmentChunk {
	if c == nil {
		return nil
	}
	return &model.AttachmentChunk{
		Id:           c.Id,
		AttachmentId: c.AttachmentId,
		SessionId:    c.SessionId,
		ChunkIndex:   c.ChunkIndex,
		Text:         c.Text,
		TokenCount:   c.TokenCount,
		Embedding:    pgvector.NewVector(c.Embedding),
		Metadata:     datatypes.JSONMap(c.Metadata),
		CreatedAt:    c.CreatedAt,
	}
}
