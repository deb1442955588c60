package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// Tokens is the bearer pair issued by the identity service. It is always read and
// written as one value so a request never pairs an access token with a foreign refresh token.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// Email is the address used at login; the access token does not carry it.
	Email string `json:"email,omitempty"`
}

func (t Tokens) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

// TokenStore persists one session's token pair.
type TokenStore interface {
	Load(ctx context.Context) (Tokens, error)
	Save(ctx context.Context, tokens Tokens) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the pair in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	tokens Tokens
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(context.Context) (Tokens, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, nil
}

func (m *MemoryStore) Save(_ context.Context, tokens Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = tokens
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = Tokens{}
	return nil
}

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisStore keeps the pair as a single JSON value under one key.
type RedisStore struct {
	store kvStore
	key   string
	ttl   time.Duration
}

// NewRedisStore binds a store to the key of one browser session.
func NewRedisStore(store kvStore, key string, ttl time.Duration) (*RedisStore, error) {
	if store == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("token key is required")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl must not be negative")
	}
	return &RedisStore{store: store, key: key, ttl: ttl}, nil
}

func (r *RedisStore) Load(ctx context.Context) (Tokens, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return Tokens{}, nil
		}
		return Tokens{}, fmt.Errorf("load session tokens: %w", err)
	}
	var tokens Tokens
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return Tokens{}, fmt.Errorf("decode session tokens: %w", err)
	}
	return tokens, nil
}

func (r *RedisStore) Save(ctx context.Context, tokens Tokens) error {
	payload, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode session tokens: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(payload), r.ttl); err != nil {
		return fmt.Errorf("save session tokens: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.store.Del(ctx, r.key); err != nil {
		return fmt.Errorf("clear session tokens: %w", err)
	}
	return nil
}
