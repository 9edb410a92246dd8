package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatSession struct {
	Id           uuid.UUID
	UserId       *uuid.UUID
	Title        string
	SystemPrompt *string
	CreatedAt    time.Time
}

// ConversationTurn is one message in a session. Embedding is nil when the
// embedding call failed at persistence time.
type ConversationTurn struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}
