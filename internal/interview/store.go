// internal/interview/store.go
package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	stderrors "report-intake/internal/common/errors"
)

// SessionStore persists ConversationState between requests. The wire
// format is an implementation detail of the store.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*ConversationState, error)
	Save(ctx context.Context, state *ConversationState) error
	Delete(ctx context.Context, sessionID string) error
}

// ErrSessionNotFound is returned by Load for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "intake:session:"

// RedisSessionStore keeps sessions as JSON values with a TTL; each save
// refreshes the TTL, so sessions expire on inactivity.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (*ConversationState, error) {
	val, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, stderrors.Wrap(stderrors.ErrCodeSessionStoreFailed, "load session", err)
	}

	var state ConversationState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, stderrors.Wrap(stderrors.ErrCodeSessionStoreFailed, "decode session", err)
	}
	ensureMaps(&state)
	return &state, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, state *ConversationState) error {
	state.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return stderrors.Wrap(stderrors.ErrCodeSessionStoreFailed, "encode session", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+state.SessionID, data, s.ttl).Err(); err != nil {
		return stderrors.Wrap(stderrors.ErrCodeSessionStoreFailed, "save session", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return stderrors.Wrap(stderrors.ErrCodeSessionStoreFailed, "delete session", err)
	}
	return nil
}

// LoadOrCreate returns the stored session or a fresh one. An empty
// sessionID always creates a new session with a generated ID.
func LoadOrCreate(ctx context.Context, store SessionStore, sessionID string) (*ConversationState, error) {
	if sessionID == "" {
		return NewState(uuid.NewString()), nil
	}

	state, err := store.Load(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return NewState(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return state, nil
}

// ensureMaps guards against sessions serialized before a field existed.
func ensureMaps(state *ConversationState) {
	if state.Answers == nil {
		state.Answers = make(map[string]string)
	}
	if state.Extracted == nil {
		state.Extracted = make(map[string]string)
	}
	if state.IngestedFiles == nil {
		state.IngestedFiles = make(map[string]map[string]interface{})
	}
	if state.Tables == nil {
		state.Tables = make(map[string][]map[string]string)
	}
}
