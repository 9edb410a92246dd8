package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ConversationTurn is append-only. Embedding stays NULL when the embedding
// call failed at write time; such turns are invisible to similarity search
// but still show up in the recent window.
type ConversationTurn struct {
	Id        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID        `gorm:"type:uuid;not null;index"`
	Role      string           `gorm:"type:varchar(20);not null"` // 'user' | 'assistant'
	Content   string           `gorm:"type:text;not null"`
	Embedding *pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time        `gorm:"autoCreateTime;index"`

	Session ChatSession `gorm:"foreignKey:SessionId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (ConversationTurn) TableName() string {
	return "conversation_turns"
}
