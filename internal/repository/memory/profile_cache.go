package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"chat-agent-be/internal/entity"
)

// ProfileCache keeps recently loaded user profiles in process memory so a
// busy thread does not hit the database on every turn. Entries expire after
// an hour; expired items are purged every ten minutes.
type ProfileCache struct {
	cache *cache.Cache
}

func NewProfileCache() *ProfileCache {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ProfileCache{
		cache: c,
	}
}

func (r *ProfileCache) Save(profile *entity.UserProfile) {
	r.cache.Set(profile.PlatformUserId, profile, cache.DefaultExpiration)
}

func (r *ProfileCache) Get(platformUserId string) (*entity.UserProfile, bool) {
	if x, found := r.cache.Get(platformUserId); found {
		return x.(*entity.UserProfile), true
	}
	return nil, false
}

func (r *ProfileCache) Delete(platformUserId string) {
	r.cache.Delete(platformUserId)
}
