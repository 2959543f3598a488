package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ThreadId  string    `gorm:"type:varchar(128);not null;index"`
	UserId    string    `gorm:"type:varchar(64);not null;index"`
	TurnId    string    `gorm:"type:varchar(64);index"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
