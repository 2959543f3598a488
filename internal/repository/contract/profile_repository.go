package contract

import (
	"context"

	"chat-agent-be/internal/entity"
)

type ProfileRepository interface {
	GetByPlatformUserId(ctx context.Context, platformUserId string) (*entity.UserProfile, error)
	Create(ctx context.Context, profile *entity.UserProfile) error
	Update(ctx context.Context, profile *entity.UserProfile) error
}
