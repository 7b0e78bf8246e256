package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/aiready-backend/internal/config"
	"github.com/stemsi/aiready-backend/internal/model"
)

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAccepted is returned by SetState when the session has already
	// passed the gate; the stored state is left untouched.
	ErrSessionAccepted = errors.New("session already accepted")
)

// SessionRepository stores the gate state of each session.
type SessionRepository interface {
	Create(ctx context.Context, sessionID string, state model.GateState, ttl time.Duration) error
	GetState(ctx context.Context, sessionID string) (model.GateState, error)
	// SetState updates an existing session without extending its lifetime.
	// A session in the accepted state is never changed; ErrSessionAccepted
	// is returned instead. The check and the write are atomic.
	SetState(ctx context.Context, sessionID string, state model.GateState) error
}

// ────────────────────────────────────────────────────────────────────────────
// Redis
// ────────────────────────────────────────────────────────────────────────────

// RedisSessionRepository keeps gate state under config.CacheKey.GateSessionKey.
type RedisSessionRepository struct {
	rdb *redis.Client
}

// NewRedisSessionRepository creates a new RedisSessionRepository.
func NewRedisSessionRepository(rdb *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb}
}

func (r *RedisSessionRepository) Create(ctx context.Context, sessionID string, state model.GateState, ttl time.Duration) error {
	key := config.CacheKey.GateSessionKey(sessionID)
	if err := r.rdb.Set(ctx, key, string(state), ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) GetState(ctx context.Context, sessionID string) (model.GateState, error) {
	key := config.CacheKey.GateSessionKey(sessionID)
	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("get session: %w", err)
	}

	state := model.GateState(raw)
	if !state.Valid() {
		return "", fmt.Errorf("get session: unknown gate state %q", raw)
	}
	return state, nil
}

// setStateScript writes ARGV[2] unless the key is missing (-1) or already
// holds ARGV[1] (0). The TTL is kept.
var setStateScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then
	return -1
end
if cur == ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "KEEPTTL")
return 1
`)

func (r *RedisSessionRepository) SetState(ctx context.Context, sessionID string, state model.GateState) error {
	key := config.CacheKey.GateSessionKey(sessionID)
	res, err := setStateScript.Run(ctx, r.rdb, []string{key}, string(model.GateAccepted), string(state)).Int()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	switch res {
	case -1:
		return ErrSessionNotFound
	case 0:
		return ErrSessionAccepted
	}
	return nil
}

// ────────────────────────────────────────────────────────────────────────────
// In-memory
// ────────────────────────────────────────────────────────────────────────────

type memorySession struct {
	state     model.GateState
	expiresAt time.Time
}

// MemorySessionRepository is a process-local SessionRepository for single
// instance deployments and the terminal client.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

// NewMemorySessionRepository creates an empty MemorySessionRepository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

func (r *MemorySessionRepository) Create(_ context.Context, sessionID string, state model.GateState, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.purgeExpired()
	r.sessions[sessionID] = memorySession{state: state, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *MemorySessionRepository) GetState(_ context.Context, sessionID string) (model.GateState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}
	return s.state, nil
}

func (r *MemorySessionRepository) SetState(_ context.Context, sessionID string, state model.GateState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.lookup(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	if s.state == model.GateAccepted {
		return ErrSessionAccepted
	}
	s.state = state
	r.sessions[sessionID] = s
	return nil
}

// lookup must be called with mu held.
func (r *MemorySessionRepository) lookup(sessionID string) (memorySession, bool) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return memorySession{}, false
	}
	if !r.now().Before(s.expiresAt) {
		delete(r.sessions, sessionID)
		return memorySession{}, false
	}
	return s, true
}

// purgeExpired must be called with mu held.
func (r *MemorySessionRepository) purgeExpired() {
	now := r.now()
	for id, s := range r.sessions {
		if !now.Before(s.expiresAt) {
			delete(r.sessions, id)
		}
	}
}
