package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/pkg/agent/state"
)

// Store persists thread state between turns.
type Store interface {
	Load(ctx context.Context, threadID string) (*state.ThreadState, error)
	Save(ctx context.Context, st *state.ThreadState) error
}

// RedisStore keeps one JSON checkpoint per thread under a fixed key prefix.
// Checkpoints carry a schema version; a version mismatch on load is treated
// as a missing checkpoint rather than an error.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	log logger.ILogger
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, log logger.ILogger) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
		log: log,
	}
}

func (s *RedisStore) key(threadID string) string {
	return fmt.Sprintf("thread:state:%s", threadID)
}

// Load returns nil (no error) when the thread has no usable checkpoint.
func (s *RedisStore) Load(ctx context.Context, threadID string) (*state.ThreadState, error) {
	raw, err := s.rdb.Get(ctx, s.key(threadID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("checkpoint load: %w", err)
	}

	var st state.ThreadState
	if err := json.Unmarshal(raw, &st); err != nil {
		s.log.Warn("checkpoint", "discarding unreadable checkpoint", map[string]interface{}{
			"thread_id": threadID,
			"error":     err.Error(),
		})
		return nil, nil
	}

	if st.SchemaVersion != state.SchemaVersion {
		s.log.Warn("checkpoint", "discarding checkpoint with stale schema", map[string]interface{}{
			"thread_id": threadID,
			"found":     st.SchemaVersion,
			"expected":  state.SchemaVersion,
		})
		return nil, nil
	}

	return &st, nil
}

func (s *RedisStore) Save(ctx context.Context, st *state.ThreadState) error {
	st.SchemaVersion = state.SchemaVersion
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("checkpoint marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(st.ThreadID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("checkpoint save: %w", err)
	}
	return nil
}
