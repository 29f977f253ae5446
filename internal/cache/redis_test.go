package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	r, err := NewRedis(context.Background(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRedis_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	_, found, err := r.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, r.Set(ctx, "user:1", []byte(`{"id":"1"}`), time.Minute))
	got, found, err := r.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":"1"}`, string(got))

	require.NoError(t, r.Delete(ctx, "user:1"))
	_, found, err = r.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedis_TTL(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, r.Set(ctx, "k", []byte("v"), 300*time.Second))
	assert.Equal(t, 300*time.Second, mr.TTL("k"))

	mr.FastForward(301 * time.Second)
	_, found, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedis_ErrorsWhenServerDown(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	mr.Close()

	_, _, err := r.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, r.Set(ctx, "k", []byte("v"), time.Second))
	assert.Error(t, r.Delete(ctx, "k"))
}

func TestNewRedis_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := NewRedis(ctx, RedisConfig{Addr: addr})
	assert.Error(t, err)
}
