package mapper

import (
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) SessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	return &entity.ChatSession{
		Id:           s.Id,
		UserId:       s.UserId,
		Title:        s.Title,
		SystemPrompt: s.SystemPrompt,
		CreatedAt:    s.CreatedAt,
	}
}

func (m *ChatMapper) SessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}
	return &model.ChatSession{
		Id:           s.Id,
		UserId:       s.UserId,
		Title:        s.Title,
		SystemPrompt: s.SystemPrompt,
		CreatedAt:    s.CreatedAt,
	}
}

// Turn Mappers

func (m *ChatMapper) TurnToEntity(t *model.ConversationTurn) *entity.ConversationTurn {
	if t == nil {
		return nil
	}
	var emb []float32
	if t.Embedding != nil {
		emb = t.Embedding.Slice()
	}
	return &entity.ConversationTurn{
		Id:        t.Id,
		SessionId: t.SessionId,
		Role:      t.Role,
		Content:   t.Content,
		Embedding: emb,
		CreatedAt: t.CreatedAt,
	}
}

func (m *ChatMapper) TurnToModel(t *entity.ConversationTurn) *model.ConversationTurn {
	if t == nil {
		return nil
	}
	var emb *pgvector.Vector
	if t.Embedding != nil {
		v := pgvector.NewVector(t.Embedding)
		emb = &v
	}
	return &model.ConversationTurn{
		Id:        t.Id,
		SessionId: t.SessionId,
		Role:      t.Role,
		Content:   t.Content,
		Embedding: emb,
		CreatedAt: t.CreatedAt,
	}
}
