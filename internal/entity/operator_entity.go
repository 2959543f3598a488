package entity

import (
	"time"

	"github.com/google/uuid"
)

// Operator is a human supervisor with access to the monitoring dashboard.
type Operator struct {
	Id           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
