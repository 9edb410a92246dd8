package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       *uuid.UUID `gorm:"type:uuid;index"` // nullable: anonymous sessions allowed
	Title        string     `gorm:"type:varchar(255)"`
	SystemPrompt *string    `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`

	User *User `gorm:"foreignKey:UserId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
