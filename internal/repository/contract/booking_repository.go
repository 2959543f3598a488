package contract

import (
	"context"

	"github.com/google/uuid"

	"chat-agent-be/internal/entity"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	Update(ctx context.Context, booking *entity.Booking) error
	GetById(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	GetByUserId(ctx context.Context, userId string, limit int) ([]*entity.Booking, error)
}
