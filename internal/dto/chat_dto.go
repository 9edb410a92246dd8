package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title        string     `json:"title" validate:"required,max=255"`
	SystemPrompt *string    `json:"system_prompt"`
	UserId       *uuid.UUID `json:"user_id"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowSessionResponse struct {
	Id           uuid.UUID  `json:"id"`
	UserId       *uuid.UUID `json:"user_id,omitempty"`
	Title        string     `json:"title"`
	SystemPrompt *string    `json:"system_prompt,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type SendMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

// ResponseMetadata describes which retrieval sources contributed to a reply.
type ResponseMetadata struct {
	SourcesUsed            []string `json:"sources_used"`
	KbSources              []string `json:"kb_sources"`
	AttachmentSources      []string `json:"attachment_sources"`
	RecentMessagesCount    int      `json:"recent_messages_count"`
	OlderMessagesCount     int      `json:"older_messages_count"`
	KbResultsCount         int      `json:"kb_results_count"`
	AttachmentResultsCount int      `json:"attachment_results_count"`
	UsingKb                bool     `json:"using_kb"`
	UsingHistory           bool     `json:"using_history"`
	UsingAttachments       bool     `json:"using_attachments"`
}

type SendMessageResponse struct {
	Reply    string           `json:"reply"`
	Metadata ResponseMetadata `json:"metadata"`
}

type TurnResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionHistoryResponse struct {
	SessionId uuid.UUID      `json:"session_id"`
	Turns     []TurnResponse `json:"turns"`
}
