package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/internal/repository/contract"
	"chat-agent-be/internal/repository/memory"
	"chat-agent-be/pkg/agent/errs"
	"chat-agent-be/pkg/embedding"
	"chat-agent-be/pkg/vectorstore/qdrant"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-]{6,18}$`)

// ProfileService owns the user profile: demographic fields, the open set of
// preferences, and the long-term preference memory in the vector store.
// Writes follow the idempotent-save rule: a field already holding a
// validated value is never silently overwritten by a duplicate save.
type ProfileService struct {
	repo        contract.ProfileRepository
	cache       *memory.ProfileCache
	memoryStore *qdrant.MemoryStore
	embedder    embedding.EmbeddingProvider
	logger      logger.ILogger
}

func NewProfileService(
	repo contract.ProfileRepository,
	cache *memory.ProfileCache,
	memoryStore *qdrant.MemoryStore,
	embedder embedding.EmbeddingProvider,
	log logger.ILogger,
) *ProfileService {
	return &ProfileService{
		repo:        repo,
		cache:       cache,
		memoryStore: memoryStore,
		embedder:    embedder,
		logger:      log,
	}
}

// GetProfile returns the profile for a platform user, creating an empty one
// on first contact.
func (s *ProfileService) GetProfile(ctx context.Context, platformUserId string) (*entity.UserProfile, error) {
	if cached, found := s.cache.Get(platformUserId); found {
		return cached, nil
	}

	profile, err := s.repo.GetByPlatformUserId(ctx, platformUserId)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &entity.UserProfile{
			PlatformUserId: platformUserId,
			Preferences:    map[string]string{},
		}
		if err := s.repo.Create(ctx, profile); err != nil {
			return nil, err
		}
	}
	if profile.Preferences == nil {
		profile.Preferences = map[string]string{}
	}

	s.cache.Save(profile)
	return profile, nil
}

// SetField writes one demographic field. Returns the outcome so callers can
// distinguish a real write from an idempotent no-op or a rejection.
func (s *ProfileService) SetField(ctx context.Context, platformUserId, field, value string) (entity.SaveOutcome, error) {
	profile, err := s.GetProfile(ctx, platformUserId)
	if err != nil {
		return "", err
	}

	value = strings.TrimSpace(value)
	changed, outcome := s.applyField(profile, field, value)
	if outcome == entity.SaveOutcomeRejectedInvalid {
		s.logger.Warn("ProfileService", "rejected invalid profile value", map[string]interface{}{
			"user_id": platformUserId,
			"field":   field,
			"value":   value,
		})
		return outcome, errs.ErrInvalidProfileValue
	}
	if !changed {
		return outcome, nil
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return "", err
	}
	s.cache.Save(profile)
	return entity.SaveOutcomeSaved, nil
}

func (s *ProfileService) applyField(profile *entity.UserProfile, field, value string) (bool, entity.SaveOutcome) {
	switch field {
	case "name":
		if value == "" {
			return false, entity.SaveOutcomeRejectedInvalid
		}
		if profile.Name == value {
			return false, entity.SaveOutcomeSkippedDuplicate
		}
		if profile.Name != "" {
			// Keep the earlier validated value.
			return false, entity.SaveOutcomeSkippedDuplicate
		}
		profile.Name = value
	case "gender":
		g := entity.Gender(strings.ToLower(value))
		if g != entity.GenderMale && g != entity.GenderFemale {
			return false, entity.SaveOutcomeRejectedInvalid
		}
		if profile.Gender != nil {
			return false, entity.SaveOutcomeSkippedDuplicate
		}
		profile.Gender = &g
	case "phone":
		if !phonePattern.MatchString(value) {
			return false, entity.SaveOutcomeRejectedInvalid
		}
		if profile.Phone != nil && *profile.Phone != "" {
			return false, entity.SaveOutcomeSkippedDuplicate
		}
		profile.Phone = &value
	case "age":
		age, err := strconv.Atoi(value)
		if err != nil || age < 1 || age > 120 {
			return false, entity.SaveOutcomeRejectedInvalid
		}
		if profile.Age != nil {
			return false, entity.SaveOutcomeSkippedDuplicate
		}
		profile.Age = &age
	case "birth_year":
		year, err := strconv.Atoi(value)
		now := time.Now().Year()
		if err != nil || year < now-120 || year > now {
			return false, entity.SaveOutcomeRejectedInvalid
		}
		if profile.BirthYear != nil {
			return false, entity.SaveOutcomeSkippedDuplicate
		}
		profile.BirthYear = &year
	default:
		return false, entity.SaveOutcomeRejectedInvalid
	}
	return true, entity.SaveOutcomeSaved
}

// SavePreference records a categorized preference (e.g. seating_preference =
// "quiet"). Saving the identical value twice is a no-op. New values are also
// pushed into the vector memory store, best-effort.
func (s *ProfileService) SavePreference(ctx context.Context, platformUserId, kind, value string) (entity.SaveOutcome, error) {
	kind = strings.TrimSpace(strings.ToLower(kind))
	value = strings.TrimSpace(value)
	if kind == "" || value == "" {
		return entity.SaveOutcomeRejectedInvalid, errs.ErrInvalidProfileValue
	}

	profile, err := s.GetProfile(ctx, platformUserId)
	if err != nil {
		return "", err
	}

	if existing, ok := profile.Preferences[kind]; ok && strings.EqualFold(existing, value) {
		return entity.SaveOutcomeSkippedDuplicate, nil
	}

	profile.Preferences[kind] = value
	if err := s.repo.Update(ctx, profile); err != nil {
		return "", err
	}
	s.cache.Save(profile)

	s.rememberPreference(ctx, platformUserId, kind, value)
	return entity.SaveOutcomeSaved, nil
}

// rememberPreference mirrors the preference into the Qdrant memory
// collection so later turns can recall it semantically. Failures are logged
// and swallowed.
func (s *ProfileService) rememberPreference(ctx context.Context, platformUserId, kind, value string) {
	if s.memoryStore == nil || s.embedder == nil {
		return
	}

	content := fmt.Sprintf("%s: %s", kind, value)
	emb, err := s.embedder.Generate(content, embedding.TaskRetrievalDocument)
	if err != nil {
		s.logger.Warn("ProfileService", "preference embedding failed", map[string]interface{}{
			"user_id": platformUserId,
			"error":   err.Error(),
		})
		return
	}

	err = s.memoryStore.Save(ctx, qdrant.MemoryEntry{
		UserID:  platformUserId,
		Kind:    kind,
		Content: content,
	}, emb.Embedding.Values)
	if err != nil {
		s.logger.Warn("ProfileService", "preference memory upsert failed", map[string]interface{}{
			"user_id": platformUserId,
			"error":   err.Error(),
		})
	}
}

// RecallPreferences returns stored memories semantically close to the query.
func (s *ProfileService) RecallPreferences(ctx context.Context, platformUserId, query string, limit int) ([]qdrant.MemoryEntry, error) {
	if s.memoryStore == nil || s.embedder == nil {
		return nil, nil
	}
	emb, err := s.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return s.memoryStore.Search(ctx, platformUserId, emb.Embedding.Values, limit)
}

// MissingFields reports which demographic fields are still unset.
func (s *ProfileService) MissingFields(ctx context.Context, platformUserId string) ([]string, error) {
	profile, err := s.GetProfile(ctx, platformUserId)
	if err != nil {
		return nil, err
	}
	return profile.MissingFields(), nil
}
