package mapper

import (
	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/model"
)

type BookingMapper struct{}

func NewBookingMapper() *BookingMapper {
	return &BookingMapper{}
}

func (m *BookingMapper) ToEntity(b *model.Booking) *entity.Booking {
	if b == nil {
		return nil
	}
	return &entity.Booking{
		Id:          b.Id,
		UserId:      b.UserId,
		ThreadId:    b.ThreadId,
		BranchName:  b.BranchName,
		GuestCount:  b.GuestCount,
		BookingTime: b.BookingTime,
		Phone:       b.Phone,
		Note:        b.Note,
		Status:      entity.BookingStatus(b.Status),
		ExternalRef: b.ExternalRef,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func (m *BookingMapper) ToModel(b *entity.Booking) *model.Booking {
	if b == nil {
		return nil
	}
	return &model.Booking{
		Id:          b.Id,
		UserId:      b.UserId,
		ThreadId:    b.ThreadId,
		BranchName:  b.BranchName,
		GuestCount:  b.GuestCount,
		BookingTime: b.BookingTime,
		Phone:       b.Phone,
		Note:        b.Note,
		Status:      string(b.Status),
		ExternalRef: b.ExternalRef,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
