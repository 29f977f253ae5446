package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"account_service/internal/cache"
	"account_service/internal/logger"
	"account_service/internal/metrics"
	"account_service/internal/models"
	"account_service/internal/repository"
)

// DefaultCacheTTL bounds how long a cached user may outlive a concurrent write.
const DefaultCacheTTL = 300 * time.Second

const userKeyPrefix = "user:"

func userCacheKey(id string) string { return userKeyPrefix + id }

// UserLookup is a read-through cache over the store for single-user fetches.
//
// Writers must call Evict after the store mutation and before answering the
// caller. A read that populates the cache just after a concurrent eviction can
// leave a stale entry; it lives at most ttl.
type UserLookup struct {
	store   repository.Users
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewUserLookup(store repository.Users, c cache.Cache, ttl time.Duration, m *metrics.Metrics, log *logger.Logger) *UserLookup {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &UserLookup{store: store, cache: c, ttl: ttl, metrics: m, log: log}
}

// GetUser returns the user with id, from cache when possible. A malformed id
// and an absent one both yield ErrUserNotFound. The cached copy has no password hash.
func (l *UserLookup) GetUser(ctx context.Context, id string) (*models.User, error) {
	key := userCacheKey(id)

	var cached models.User
	found, err := cache.GetJSON(ctx, l.cache, key, &cached)
	if err != nil {
		l.metrics.CacheLookup(metrics.CacheError)
		return nil, fmt.Errorf("read cached user: %w", err)
	}
	if found {
		l.metrics.CacheLookup(metrics.CacheHit)
		return &cached, nil
	}
	l.metrics.CacheLookup(metrics.CacheMiss)

	u, err := l.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrInvalidID) {
		l.log.Debugw("user_lookup_invalid_id", "user_id", id)
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	if err := cache.SetJSON(ctx, l.cache, key, u, l.ttl); err != nil {
		return nil, fmt.Errorf("populate user cache: %w", err)
	}
	u.PasswordHash = ""
	return u, nil
}

// Evict drops the cached copy of id.
func (l *UserLookup) Evict(ctx context.Context, id string) error {
	err := l.cache.Delete(ctx, userCacheKey(id))
	l.metrics.CacheEvict(err)
	if err != nil {
		return fmt.Errorf("evict cached user: %w", err)
	}
	return nil
}
