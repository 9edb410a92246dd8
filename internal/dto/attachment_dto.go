package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadAttachmentResponse struct {
	Id        uuid.UUID `json:"id"`
	SessionId uuid.UUID `json:"session_id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
}

type AttachmentResponse struct {
	Id          uuid.UUID  `json:"id"`
	SessionId   uuid.UUID  `json:"session_id"`
	Filename    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	ByteSize    int64      `json:"byte_size"`
	TotalChunks int        `json:"total_chunks"`
	Status      string     `json:"status"`
	UploadedAt  time.Time  `json:"uploaded_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}
