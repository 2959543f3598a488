package contract

import (
	"context"

	"chat-agent-be/internal/entity"
)

type OperatorRepository interface {
	GetByEmail(ctx context.Context, email string) (*entity.Operator, error)
	Create(ctx context.Context, operator *entity.Operator) error
}
