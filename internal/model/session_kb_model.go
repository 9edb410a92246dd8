package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionKB links a chat session to a knowledge base. Unique per pair.
type SessionKB struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_session_kbs_session_kb"`
	KbId       uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_session_kbs_session_kb"`
	AttachedAt time.Time `gorm:"autoCreateTime"`

	Session       ChatSession   `gorm:"foreignKey:SessionId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	KnowledgeBase KnowledgeBase `gorm:"foreignKey:KbId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (SessionKB) TableName() string {
	return "session_kbs"
}
