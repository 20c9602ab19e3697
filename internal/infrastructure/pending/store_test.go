package pending

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blip.dashboard/pkg/redis"
)

var testKey = strings.Repeat("ab", 32)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv := miniredis.RunT(t)
	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	redis.SetClient(cli)
	t.Cleanup(func() {
		_ = cli.Close()
		redis.SetClient(nil)
	})
	return srv
}

func TestRedisStore_RoundTrip(t *testing.T) {
	srv := withMiniredis(t)
	ctx := context.Background()

	store, err := NewRedisStore(testKey, "device-1", time.Hour)
	require.NoError(t, err)

	email, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)

	require.NoError(t, store.Save(ctx, "ana@blip.money"))
	raw, err := srv.Get(keyPrefix + ":device-1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "ana@blip.money")

	email, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana@blip.money", email)

	require.NoError(t, store.Clear(ctx))
	email, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestRedisStore_Expires(t *testing.T) {
	srv := withMiniredis(t)
	ctx := context.Background()

	store, err := NewRedisStore(testKey, "device-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "ana@blip.money"))

	srv.FastForward(2 * time.Minute)
	email, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, email)
}

func TestNewRedisStore_Validation(t *testing.T) {
	_, err := NewRedisStore("zz", "device-1", 0)
	assert.Error(t, err)

	_, err = NewRedisStore(testKey, "", 0)
	assert.Error(t, err)

	s, err := NewRedisStore(testKey, "d", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, s.ttl)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, "ana@blip.money"))
	email, _ := s.Load(ctx)
	assert.Equal(t, "ana@blip.money", email)

	require.NoError(t, s.Clear(ctx))
	email, _ = s.Load(ctx)
	assert.Empty(t, email)
}
