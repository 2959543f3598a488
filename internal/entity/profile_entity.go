package entity

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// SaveOutcome reports what a profile/preference write actually did.
type SaveOutcome string

const (
	SaveOutcomeSaved            SaveOutcome = "saved"
	SaveOutcomeSkippedDuplicate SaveOutcome = "skipped_duplicate"
	SaveOutcomeRejectedInvalid  SaveOutcome = "rejected_invalid"
)

// UserProfile is the durable per-user record keyed by the messaging platform
// user id. Preferences holds free-form remembered facts keyed by kind.
type UserProfile struct {
	Id             uuid.UUID
	PlatformUserId string
	Name           string
	Gender         *Gender
	Phone          *string
	Age            *int
	BirthYear      *int
	Preferences    map[string]string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MissingFields lists the demographic fields still unset, in a fixed order.
func (p *UserProfile) MissingFields() []string {
	var missing []string
	if p.Gender == nil {
		missing = append(missing, "gender")
	}
	if p.Phone == nil || *p.Phone == "" {
		missing = append(missing, "phone")
	}
	if p.Age == nil {
		missing = append(missing, "age")
	}
	if p.BirthYear == nil {
		missing = append(missing, "birth_year")
	}
	return missing
}

// IsComplete reports whether all demographic fields are filled.
func (p *UserProfile) IsComplete() bool {
	return len(p.MissingFields()) == 0
}
