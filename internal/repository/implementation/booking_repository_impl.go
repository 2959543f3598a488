package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/mapper"
	"chat-agent-be/internal/model"
	"chat-agent-be/internal/repository/contract"
)

type BookingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BookingMapper
}

func NewBookingRepository(db *gorm.DB) contract.BookingRepository {
	return &BookingRepositoryImpl{
		db:     db,
		mapper: mapper.NewBookingMapper(),
	}
}

func (r *BookingRepositoryImpl) Create(ctx context.Context, booking *entity.Booking) error {
	m := r.mapper.ToModel(booking)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*booking = *r.mapper.ToEntity(m)
	return nil
}

func (r *BookingRepositoryImpl) Update(ctx context.Context, booking *entity.Booking) error {
	m := r.mapper.ToModel(booking)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*booking = *r.mapper.ToEntity(m)
	return nil
}

func (r *BookingRepositoryImpl) GetById(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var m model.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BookingRepositoryImpl) GetByUserId(ctx context.Context, userId string, limit int) ([]*entity.Booking, error) {
	if limit <= 0 {
		limit = 10
	}
	var models []*model.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.Booking, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
