package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserProfile struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PlatformUserId string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name           string    `gorm:"type:varchar(255)"`
	Gender         *string   `gorm:"type:varchar(16)"`
	Phone          *string   `gorm:"type:varchar(32)"`
	Age            *int
	BirthYear      *int
	Preferences    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
