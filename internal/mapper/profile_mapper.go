package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/model"
)

type ProfileMapper struct{}

func NewProfileMapper() *ProfileMapper {
	return &ProfileMapper{}
}

func (m *ProfileMapper) ToEntity(p *model.UserProfile) *entity.UserProfile {
	if p == nil {
		return nil
	}

	prefs := map[string]string{}
	if len(p.Preferences) > 0 {
		// A corrupt preferences blob degrades to an empty map.
		_ = json.Unmarshal(p.Preferences, &prefs)
	}

	var gender *entity.Gender
	if p.Gender != nil {
		g := entity.Gender(*p.Gender)
		gender = &g
	}

	return &entity.UserProfile{
		Id:             p.Id,
		PlatformUserId: p.PlatformUserId,
		Name:           p.Name,
		Gender:         gender,
		Phone:          p.Phone,
		Age:            p.Age,
		BirthYear:      p.BirthYear,
		Preferences:    prefs,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (m *ProfileMapper) ToModel(p *entity.UserProfile) *model.UserProfile {
	if p == nil {
		return nil
	}

	var prefs datatypes.JSON
	if p.Preferences != nil {
		raw, err := json.Marshal(p.Preferences)
		if err == nil {
			prefs = datatypes.JSON(raw)
		}
	}

	var gender *string
	if p.Gender != nil {
		g := string(*p.Gender)
		gender = &g
	}

	return &model.UserProfile{
		Id:             p.Id,
		PlatformUserId: p.PlatformUserId,
		Name:           p.Name,
		Gender:         gender,
		Phone:          p.Phone,
		Age:            p.Age,
		BirthYear:      p.BirthYear,
		Preferences:    prefs,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
