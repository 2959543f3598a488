package model

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      string    `gorm:"type:varchar(64);not null;index"`
	ThreadId    string    `gorm:"type:varchar(128);index"`
	BranchName  string    `gorm:"type:varchar(255);not null"`
	GuestCount  int       `gorm:"not null"`
	BookingTime time.Time `gorm:"not null"`
	Phone       string    `gorm:"type:varchar(32);not null"`
	Note        string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(32);not null;default:'pending'"`
	ExternalRef string    `gorm:"type:varchar(128)"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Booking) TableName() string {
	return "bookings"
}
