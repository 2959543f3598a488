package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-agent-be/internal/dto"
	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/errs"
	"chat-agent-be/pkg/reservation"
)

type fakeBookingRepo struct {
	bookings []*entity.Booking
}

func (r *fakeBookingRepo) Create(_ context.Context, b *entity.Booking) error {
	if b.Id == uuid.Nil {
		b.Id = uuid.New()
	}
	r.bookings = append(r.bookings, b)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *entity.Booking) error {
	return nil
}

func (r *fakeBookingRepo) GetById(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	for _, b := range r.bookings {
		if b.Id == id {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) GetByUserId(_ context.Context, userId string, _ int) ([]*entity.Booking, error) {
	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.UserId == userId {
			out = append(out, b)
		}
	}
	return out, nil
}

func validInput() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		UserId:      "user-1",
		ThreadId:    "thread-1",
		BranchName:  "Riverside",
		GuestCount:  4,
		BookingTime: time.Now().Add(24 * time.Hour),
		Phone:       "+6681234567",
		Name:        "Alex",
	}
}

func TestCreateBookingConfirmed(t *testing.T) {
	var gotAPIKey string
	var gotReq reservation.CreateRequest
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(reservation.CreateResponse{
			ReservationID: "RSV-123",
			Status:        "confirmed",
		})
	}))
	defer api.Close()

	repo := &fakeBookingRepo{}
	svc := NewBookingService(repo, reservation.NewClient(api.URL, "secret-key"), logger.NewNopLogger())

	booking, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, "RSV-123", booking.ExternalRef)
	assert.Equal(t, "secret-key", gotAPIKey)
	assert.Equal(t, "Riverside", gotReq.BranchName)
	assert.Equal(t, 4, gotReq.GuestCount)
	require.Len(t, repo.bookings, 1)
}

func TestCreateBookingAPIFailure(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no tables left", http.StatusConflict)
	}))
	defer api.Close()

	repo := &fakeBookingRepo{}
	svc := NewBookingService(repo, reservation.NewClient(api.URL, "k"), logger.NewNopLogger())

	_, err := svc.Create(context.Background(), validInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrToolExecution)

	// The booking row is still written so operators can follow up.
	require.Len(t, repo.bookings, 1)
	assert.Equal(t, entity.BookingStatusFailed, repo.bookings[0].Status)
}

func TestCreateBookingValidation(t *testing.T) {
	svc := NewBookingService(&fakeBookingRepo{}, reservation.NewClient("http://unused", "k"), logger.NewNopLogger())

	tests := []struct {
		name   string
		mutate func(*dto.CreateBookingRequest)
	}{
		{"missing branch", func(in *dto.CreateBookingRequest) { in.BranchName = "" }},
		{"zero guests", func(in *dto.CreateBookingRequest) { in.GuestCount = 0 }},
		{"too many guests", func(in *dto.CreateBookingRequest) { in.GuestCount = 100 }},
		{"missing phone", func(in *dto.CreateBookingRequest) { in.Phone = "" }},
		{"time in the past", func(in *dto.CreateBookingRequest) { in.BookingTime = time.Now().Add(-time.Hour) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := svc.Create(context.Background(), input)
			assert.ErrorIs(t, err, errs.ErrToolExecution)
		})
	}
}
