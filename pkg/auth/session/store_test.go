package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockKV struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockKV() *mockKV {
	return &mockKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockKV) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *mockKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestRedisStoreRoundTripsPairAsOneValue(t *testing.T) {
	ctx := context.Background()
	kv := newMockKV()
	store, err := NewRedisStore(kv, "console:session:abc:tokens", time.Hour)
	require.NoError(t, err)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	pair := Tokens{AccessToken: "a", RefreshToken: "r", Email: "e@x.y"}
	require.NoError(t, store.Save(ctx, pair))
	assert.Len(t, kv.data, 1)
	assert.Equal(t, time.Hour, kv.ttls["console:session:abc:tokens"])

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, pair, loaded)

	require.NoError(t, store.Clear(ctx))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.Empty())
}

func TestRedisStoreRejectsCorruptValue(t *testing.T) {
	kv := newMockKV()
	kv.data["k"] = "{"
	store, err := NewRedisStore(kv, "k", 0)
	require.NoError(t, err)
	_, err = store.Load(context.Background())
	assert.Error(t, err)
}

func TestNewRedisStoreValidatesArguments(t *testing.T) {
	_, err := NewRedisStore(nil, "k", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisStore(newMockKV(), " ", time.Minute)
	assert.Error(t, err)
}
