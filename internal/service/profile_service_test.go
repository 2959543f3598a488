package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/internal/repository/memory"
	"chat-agent-be/pkg/agent/errs"
)

// fakeProfileRepo is an in-memory ProfileRepository.
type fakeProfileRepo struct {
	profiles map[string]*entity.UserProfile
	updates  int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*entity.UserProfile{}}
}

func (r *fakeProfileRepo) GetByPlatformUserId(_ context.Context, id string) (*entity.UserProfile, error) {
	return r.profiles[id], nil
}

func (r *fakeProfileRepo) Create(_ context.Context, p *entity.UserProfile) error {
	r.profiles[p.PlatformUserId] = p
	return nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p *entity.UserProfile) error {
	r.updates++
	r.profiles[p.PlatformUserId] = p
	return nil
}

func newProfileService(repo *fakeProfileRepo) *ProfileService {
	return NewProfileService(repo, memory.NewProfileCache(), nil, nil, logger.NewNopLogger())
}

func TestGetProfileCreatesOnFirstContact(t *testing.T) {
	svc := newProfileService(newFakeProfileRepo())

	profile, err := svc.GetProfile(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "user-1", profile.PlatformUserId)
	assert.NotNil(t, profile.Preferences)
}

func TestSetFieldValidation(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr bool
	}{
		{"valid gender", "gender", "female", false},
		{"gender case insensitive", "gender", "Male", false},
		{"invalid gender", "gender", "dragon", true},
		{"valid phone", "phone", "+66 81 234 5678", false},
		{"phone too short", "phone", "123", true},
		{"phone with letters", "phone", "call-me-maybe", true},
		{"valid age", "age", "34", false},
		{"age out of range", "age", "250", true},
		{"age not a number", "age", "thirty", true},
		{"valid birth year", "birth_year", "1990", false},
		{"future birth year", "birth_year", "2999", true},
		{"unknown field", "shoe_size", "42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newProfileService(newFakeProfileRepo())

			outcome, err := svc.SetField(context.Background(), "user-1", tt.field, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrInvalidProfileValue)
				assert.Equal(t, entity.SaveOutcomeRejectedInvalid, outcome)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, entity.SaveOutcomeSaved, outcome)
			}
		})
	}
}

func TestSetFieldNeverOverwrites(t *testing.T) {
	svc := newProfileService(newFakeProfileRepo())
	ctx := context.Background()

	outcome, err := svc.SetField(ctx, "user-1", "age", "34")
	require.NoError(t, err)
	require.Equal(t, entity.SaveOutcomeSaved, outcome)

	// Same value again: idempotent no-op.
	outcome, err = svc.SetField(ctx, "user-1", "age", "34")
	assert.NoError(t, err)
	assert.Equal(t, entity.SaveOutcomeSkippedDuplicate, outcome)

	// Different value: the earlier validated value wins.
	outcome, err = svc.SetField(ctx, "user-1", "age", "35")
	assert.NoError(t, err)
	assert.Equal(t, entity.SaveOutcomeSkippedDuplicate, outcome)

	profile, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, profile.Age)
	assert.Equal(t, 34, *profile.Age)
}

func TestSavePreference(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := newProfileService(repo)
	ctx := context.Background()

	outcome, err := svc.SavePreference(ctx, "user-1", "food_preference", "spicy food")
	require.NoError(t, err)
	assert.Equal(t, entity.SaveOutcomeSaved, outcome)

	// Duplicate save, case-insensitive: no write.
	updatesBefore := repo.updates
	outcome, err = svc.SavePreference(ctx, "user-1", "food_preference", "Spicy Food")
	assert.NoError(t, err)
	assert.Equal(t, entity.SaveOutcomeSkippedDuplicate, outcome)
	assert.Equal(t, updatesBefore, repo.updates)

	// New value for the same kind replaces it.
	outcome, err = svc.SavePreference(ctx, "user-1", "food_preference", "mild food")
	assert.NoError(t, err)
	assert.Equal(t, entity.SaveOutcomeSaved, outcome)

	profile, err := svc.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "mild food", profile.Preferences["food_preference"])
}

func TestSavePreferenceRejectsEmpty(t *testing.T) {
	svc := newProfileService(newFakeProfileRepo())

	outcome, err := svc.SavePreference(context.Background(), "user-1", "", "anything")
	assert.ErrorIs(t, err, errs.ErrInvalidProfileValue)
	assert.Equal(t, entity.SaveOutcomeRejectedInvalid, outcome)
}

func TestMissingFields(t *testing.T) {
	svc := newProfileService(newFakeProfileRepo())
	ctx := context.Background()

	missing, err := svc.MissingFields(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"gender", "phone", "age", "birth_year"}, missing)

	_, err = svc.SetField(ctx, "user-1", "phone", "+6681234567")
	require.NoError(t, err)

	missing, err = svc.MissingFields(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"gender", "age", "birth_year"}, missing)
}
