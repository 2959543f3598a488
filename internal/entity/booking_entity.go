package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusFailed    BookingStatus = "failed"
)

// Booking is a reservation created on the user's behalf through the booking
// tool. ExternalRef holds the id returned by the reservation API.
type Booking struct {
	Id          uuid.UUID
	UserId      string
	ThreadId    string
	BranchName  string
	GuestCount  int
	BookingTime time.Time
	Phone       string
	Note        string
	Status      BookingStatus
	ExternalRef string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
