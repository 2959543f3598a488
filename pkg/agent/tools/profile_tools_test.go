package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-agent-be/internal/entity"
	"chat-agent-be/pkg/agent/errs"
)

// fakeProfiles records what the tools asked it to save.
type fakeProfiles struct {
	profile     entity.UserProfile
	setFields   map[string]string
	preferences map[string]string

	setOutcome  entity.SaveOutcome
	setErr      error
	prefOutcome entity.SaveOutcome
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		profile:     entity.UserProfile{PlatformUserId: "user-1", Preferences: map[string]string{}},
		setFields:   map[string]string{},
		preferences: map[string]string{},
		setOutcome:  entity.SaveOutcomeSaved,
		prefOutcome: entity.SaveOutcomeSaved,
	}
}

func (f *fakeProfiles) GetProfile(_ context.Context, _ string) (*entity.UserProfile, error) {
	return &f.profile, nil
}

func (f *fakeProfiles) SetField(_ context.Context, _, field, value string) (entity.SaveOutcome, error) {
	f.setFields[field] = value
	return f.setOutcome, f.setErr
}

func (f *fakeProfiles) SavePreference(_ context.Context, _, kind, value string) (entity.SaveOutcome, error) {
	f.preferences[kind] = value
	return f.prefOutcome, nil
}

func TestSavePreferenceToolRoutesDemographics(t *testing.T) {
	tests := []struct {
		name        string
		kind        string
		value       string
		wantField   bool // true: SetField, false: SavePreference
	}{
		{"phone is demographic", "phone", "+6681234567", true},
		{"birth year is demographic", "birth_year", "1990", true},
		{"gender is demographic", "gender", "female", true},
		{"seating is a preference", "seating_preference", "quiet corner", false},
		{"free-form kind is a preference", "music_taste", "jazz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := newFakeProfiles()
			tool := NewSavePreferenceTool(profiles)

			result, err := tool.Execute(context.Background(), Invocation{
				UserID: "user-1",
				Args:   map[string]any{"kind": tt.kind, "value": tt.value},
			})
			require.NoError(t, err)
			assert.Equal(t, "saved", result)

			if tt.wantField {
				assert.Equal(t, tt.value, profiles.setFields[tt.kind])
				assert.Empty(t, profiles.preferences)
			} else {
				assert.Equal(t, tt.value, profiles.preferences[tt.kind])
				assert.Empty(t, profiles.setFields)
			}
		})
	}
}

func TestSavePreferenceToolInvalidValueIsQuiet(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.setOutcome = entity.SaveOutcomeRejectedInvalid
	profiles.setErr = errs.ErrInvalidProfileValue
	tool := NewSavePreferenceTool(profiles)

	result, err := tool.Execute(context.Background(), Invocation{
		UserID: "user-1",
		Args:   map[string]any{"kind": "age", "value": "nine hundred"},
	})

	// The model is told to move on; the guest never sees an error.
	require.NoError(t, err)
	assert.Contains(t, result, "not saved")
}

func TestSavePreferenceToolDuplicate(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.prefOutcome = entity.SaveOutcomeSkippedDuplicate
	tool := NewSavePreferenceTool(profiles)

	result, err := tool.Execute(context.Background(), Invocation{
		UserID: "user-1",
		Args:   map[string]any{"kind": "food_preference", "value": "spicy food"},
	})
	require.NoError(t, err)
	assert.Equal(t, "already known", result)
}

func TestGetUserProfileTool(t *testing.T) {
	profiles := newFakeProfiles()
	age := 34
	profiles.profile.Name = "Alex"
	profiles.profile.Age = &age
	profiles.profile.Preferences["food_preference"] = "spicy food"
	tool := NewGetUserProfileTool(profiles)

	result, err := tool.Execute(context.Background(), Invocation{UserID: "user-1"})
	require.NoError(t, err)

	assert.Contains(t, result, "name: Alex")
	assert.Contains(t, result, "age: 34")
	assert.Contains(t, result, "food_preference: spicy food")
	assert.Contains(t, result, "missing fields:")
	assert.Contains(t, result, "gender")
}

func TestGetUserProfileToolEmpty(t *testing.T) {
	tool := NewGetUserProfileTool(newFakeProfiles())

	result, err := tool.Execute(context.Background(), Invocation{UserID: "user-1"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(result, "missing fields") || strings.Contains(result, "nothing known"),
		"unexpected result: %q", result)
}
