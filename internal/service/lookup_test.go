package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"account_service/internal/cache"
	"account_service/internal/logger"
	"account_service/internal/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLookup(t *testing.T) (*UserLookup, *fakeUsers, *cache.Memory) {
	t.Helper()
	repo := newFakeUsers()
	mem := cache.NewMemory(0)
	t.Cleanup(func() { _ = mem.Close() })
	return NewUserLookup(repo, mem, time.Minute, metrics.New(prometheus.NewRegistry()), logger.Nop()), repo, mem
}

func TestUserLookup_SecondGetServedFromCache(t *testing.T) {
	ctx := context.Background()
	lookup, repo, _ := newTestLookup(t)
	alice := seedAlice(t, repo)

	first, err := lookup.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	second, err := lookup.GetUser(ctx, alice.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.gets(), "store must be hit at most once")
	assert.Equal(t, first.Username, second.Username)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.Empty(t, first.PasswordHash)
	assert.Empty(t, second.PasswordHash)
}

func TestUserLookup_CachedCopyHasNoHash(t *testing.T) {
	ctx := context.Background()
	lookup, repo, mem := newTestLookup(t)
	alice := seedAlice(t, repo)

	_, err := lookup.GetUser(ctx, alice.ID)
	require.NoError(t, err)

	raw, found, err := mem.Get(ctx, userCacheKey(alice.ID))
	require.NoError(t, err)
	require.True(t, found)
	assert.NotContains(t, string(raw), "hashed:")
}

func TestUserLookup_NotFound(t *testing.T) {
	ctx := context.Background()
	lookup, _, mem := newTestLookup(t)

	_, err := lookup.GetUser(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = lookup.GetUser(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrUserNotFound, "malformed id reads as not found")

	assert.Equal(t, 0, mem.Len(), "absence is not cached")
}

func TestUserLookup_EvictForcesReload(t *testing.T) {
	ctx := context.Background()
	lookup, repo, _ := newTestLookup(t)
	alice := seedAlice(t, repo)

	_, err := lookup.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	require.NoError(t, lookup.Evict(ctx, alice.ID))
	_, err = lookup.GetUser(ctx, alice.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.gets())
}

func TestUserLookup_CacheErrorsSurface(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUsers()
	alice := seedAlice(t, repo)
	down := errors.New("redis down")
	lookup := NewUserLookup(repo, failingCache{err: down}, 0, nil, logger.Nop())

	_, err := lookup.GetUser(ctx, alice.ID)
	assert.ErrorIs(t, err, down)
	assert.ErrorIs(t, lookup.Evict(ctx, alice.ID), down)
	assert.Equal(t, DefaultCacheTTL, lookup.ttl)
}

func TestUserLookup_StoreErrorSurfaces(t *testing.T) {
	lookup, repo, _ := newTestLookup(t)
	repo.failWith = errors.New("db down")

	_, err := lookup.GetUser(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}
