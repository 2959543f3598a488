package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"chat-agent-be/internal/dto"
	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/internal/repository/contract"
	"chat-agent-be/pkg/agent/errs"
	"chat-agent-be/pkg/reservation"
)

// BookingService executes confirmed bookings: validate, call the external
// reservation API, then persist the result locally. A booking row is written
// even on API failure so operators can follow up.
type BookingService struct {
	repo     contract.BookingRepository
	client   *reservation.Client
	validate *validator.Validate
	logger   logger.ILogger
}

func NewBookingService(repo contract.BookingRepository, client *reservation.Client, log logger.ILogger) *BookingService {
	return &BookingService{
		repo:     repo,
		client:   client,
		validate: validator.New(),
		logger:   log,
	}
}

func (s *BookingService) Create(ctx context.Context, input dto.CreateBookingRequest) (*entity.Booking, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, errs.NewToolError("create_booking", err)
	}
	if input.BookingTime.Before(time.Now()) {
		return nil, errs.NewToolError("create_booking", errTimeInPast)
	}

	booking := &entity.Booking{
		UserId:      input.UserId,
		ThreadId:    input.ThreadId,
		BranchName:  input.BranchName,
		GuestCount:  input.GuestCount,
		BookingTime: input.BookingTime,
		Phone:       input.Phone,
		Note:        input.Note,
		Status:      entity.BookingStatusPending,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, errs.NewToolError("create_booking", err)
	}

	resp, err := s.client.Create(ctx, reservation.CreateRequest{
		BranchName:  input.BranchName,
		GuestCount:  input.GuestCount,
		BookingTime: input.BookingTime.Format(time.RFC3339),
		Phone:       input.Phone,
		Name:        input.Name,
		Note:        input.Note,
	})
	if err != nil {
		booking.Status = entity.BookingStatusFailed
		if updateErr := s.repo.Update(ctx, booking); updateErr != nil {
			s.logger.Error("BookingService", "failed to mark booking as failed", map[string]interface{}{
				"booking_id": booking.Id,
				"error":      updateErr.Error(),
			})
		}
		return nil, errs.NewToolError("create_booking", err)
	}

	booking.Status = entity.BookingStatusConfirmed
	booking.ExternalRef = resp.ReservationID
	if err := s.repo.Update(ctx, booking); err != nil {
		// The reservation exists upstream; log and return it anyway.
		s.logger.Error("BookingService", "confirmed booking not persisted", map[string]interface{}{
			"booking_id":   booking.Id,
			"external_ref": resp.ReservationID,
			"error":        err.Error(),
		})
	}

	s.logger.Info("BookingService", "booking confirmed", map[string]interface{}{
		"booking_id":   booking.Id,
		"external_ref": booking.ExternalRef,
		"branch":       booking.BranchName,
	})
	return booking, nil
}

var errTimeInPast = errors.New("booking time is in the past")
