package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/logger"
	redislib "github.com/redis/go-redis/v9"
)

// Store persists one Theme per user id.
type Store interface {
	Load(ctx context.Context, userID string) (Theme, bool, error)
	Save(ctx context.Context, userID string, theme Theme) error
	Delete(ctx context.Context, userID string) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	themes map[string]Theme
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{themes: map[string]Theme{}}
}

func (m *MemoryStore) Load(_ context.Context, userID string) (Theme, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.themes[userID]
	return t, ok, nil
}

func (m *MemoryStore) Save(_ context.Context, userID string, theme Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.themes[userID] = theme
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.themes, userID)
	return nil
}

type redisClient interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SettingsKey(userID string) string
}

// RedisStore keeps each user's theme as JSON without expiry.
type RedisStore struct {
	client redisClient
}

func NewRedisStore(client redisClient) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Load(ctx context.Context, userID string) (Theme, bool, error) {
	raw, err := r.client.Get(ctx, r.client.SettingsKey(userID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return Theme{}, false, nil
		}
		return Theme{}, false, fmt.Errorf("load settings: %w", err)
	}
	var theme Theme
	if err := json.Unmarshal([]byte(raw), &theme); err != nil {
		return Theme{}, false, fmt.Errorf("decode settings: %w", err)
	}
	return theme, true, nil
}

func (r *RedisStore) Save(ctx context.Context, userID string, theme Theme) error {
	payload, err := json.Marshal(theme)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := r.client.Set(ctx, r.client.SettingsKey(userID), string(payload), 0); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.client.SettingsKey(userID)); err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}

// Service reads and writes a user's theme. Read failures fall back to the defaults
// because a broken preference store must not block the console.
type Service struct {
	store Store
	logg  *logger.Logger
}

func NewService(store Store, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("settings store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{store: store, logg: logg}, nil
}

func (s *Service) Get(ctx context.Context, userID string) Theme {
	if strings.TrimSpace(userID) == "" {
		return Defaults()
	}
	theme, ok, err := s.store.Load(ctx, userID)
	if err != nil {
		s.logg.Warn(ctx, "settings load failed, serving defaults: "+err.Error())
		return Defaults()
	}
	if !ok {
		return Defaults()
	}
	return fillDefaults(theme)
}

// Update applies patch to the stored theme and saves the result.
func (s *Service) Update(ctx context.Context, userID string, patch Patch) (Theme, error) {
	if strings.TrimSpace(userID) == "" {
		return Theme{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")
	}
	next := patch.Apply(s.Get(ctx, userID))
	if err := next.Validate(); err != nil {
		return Theme{}, err
	}
	if err := s.store.Save(ctx, userID, next); err != nil {
		return Theme{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to save settings")
	}
	return next, nil
}

// ToggleNavCollapsed flips the sidebar state.
func (s *Service) ToggleNavCollapsed(ctx context.Context, userID string) (Theme, error) {
	collapsed := !s.Get(ctx, userID).NavCollapsed
	return s.Update(ctx, userID, Patch{NavCollapsed: &collapsed})
}

// Reset drops the stored theme so the defaults apply again.
func (s *Service) Reset(ctx context.Context, userID string) (Theme, error) {
	if strings.TrimSpace(userID) == "" {
		return Theme{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return Theme{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to reset settings")
	}
	return Defaults(), nil
}
