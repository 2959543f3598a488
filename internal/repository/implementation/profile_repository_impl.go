package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/mapper"
	"chat-agent-be/internal/model"
	"chat-agent-be/internal/repository/contract"
)

type ProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProfileMapper
}

func NewProfileRepository(db *gorm.DB) contract.ProfileRepository {
	return &ProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewProfileMapper(),
	}
}

func (r *ProfileRepositoryImpl) GetByPlatformUserId(ctx context.Context, platformUserId string) (*entity.UserProfile, error) {
	var m model.UserProfile
	err := r.db.WithContext(ctx).
		Where("platform_user_id = ?", platformUserId).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProfileRepositoryImpl) Create(ctx context.Context, profile *entity.UserProfile) error {
	m := r.mapper.ToModel(profile)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*profile = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProfileRepositoryImpl) Update(ctx context.Context, profile *entity.UserProfile) error {
	m := r.mapper.ToModel(profile)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*profile = *r.mapper.ToEntity(m)
	return nil
}
