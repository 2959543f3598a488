package dto

import "time"

// CreateBookingRequest is validated before anything touches the reservation
// API.
type CreateBookingRequest struct {
	UserId      string    `validate:"required"`
	ThreadId    string    `validate:"required"`
	BranchName  string    `validate:"required,min=2"`
	GuestCount  int       `validate:"required,min=1,max=50"`
	BookingTime time.Time `validate:"required"`
	Phone       string    `validate:"required,min=7,max=20"`
	Note        string    `validate:"max=500"`
	Name        string
}
