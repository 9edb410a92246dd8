package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateKBRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
}

type CreateKBResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateKBRequest struct {
	Id          uuid.UUID
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
}

type ShowKBResponse struct {
	Id          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AttachKBRequest struct {
	KbId uuid.UUID `json:"kb_id" validate:"required"`
}

type AttachKBResponse struct {
	SessionId  uuid.UUID `json:"session_id"`
	KbId       uuid.UUID `json:"kb_id"`
	KbTitle    string    `json:"kb_title"`
	AttachedAt time.Time `json:"attached_at"`
}

type AttachedKBResponse struct {
	KbId       uuid.UUID `json:"kb_id"`
	Title      string    `json:"title"`
	AttachedAt time.Time `json:"attached_at"`
}

type DocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	KbId      uuid.UUID `json:"kb_id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	ByteSize  int64     `json:"byte_size"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type IngestDocumentResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Status     string    `json:"status"`
}
