package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/model"
	"chat-agent-be/internal/repository/contract"
)

type OperatorRepositoryImpl struct {
	db *gorm.DB
}

func NewOperatorRepository(db *gorm.DB) contract.OperatorRepository {
	return &OperatorRepositoryImpl{db: db}
}

func (r *OperatorRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entity.Operator, error) {
	var m model.Operator
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity.Operator{
		Id:           m.Id,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FullName:     m.FullName,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

func (r *OperatorRepositoryImpl) Create(ctx context.Context, operator *entity.Operator) error {
	m := &model.Operator{
		Id:           operator.Id,
		Email:        operator.Email,
		PasswordHash: operator.PasswordHash,
		FullName:     operator.FullName,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	operator.Id = m.Id
	operator.CreatedAt = m.CreatedAt
	operator.UpdatedAt = m.UpdatedAt
	return nil
}
