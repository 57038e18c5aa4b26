package profiles

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/gleeworld/gleeworld/internal/shared"
)

// invalidateChannel carries identity ids whose profile rows changed.
const invalidateChannel = "profiles.invalidate"

// RepositoryPort defines data access for the loader.
type RepositoryPort interface {
	FetchProfile(ctx context.Context, identityID string) (Profile, error)
}

// Loader fetches profiles with short-lived memoization so stacked route
// guards on one request tree do not refetch the same row. A missing row is
// not an error: the loader returns the guest profile (least privilege).
type Loader struct {
	repo   RepositoryPort
	cache  *expirable.LRU[string, Profile]
	redis  *redis.Client
	logger *slog.Logger
}

// NewLoader constructs a Loader. ttl bounds how stale a cached profile can
// get; a zero ttl disables memoization.
func NewLoader(repo RepositoryPort, redisClient *redis.Client, logger *slog.Logger, ttl time.Duration) *Loader {
	var cache *expirable.LRU[string, Profile]
	if ttl > 0 {
		cache = expirable.NewLRU[string, Profile](2048, nil, ttl)
	}
	return &Loader{repo: repo, cache: cache, redis: redisClient, logger: logger}
}

// Load returns the profile for an identity, falling back to the guest
// profile when no row exists. Fetch failures propagate so callers can fail
// closed.
func (l *Loader) Load(ctx context.Context, identityID string) (Profile, error) {
	if identityID == "" {
		return Guest(""), nil
	}
	if l.cache != nil {
		if p, ok := l.cache.Get(identityID); ok {
			return p, nil
		}
	}
	p, err := l.repo.FetchProfile(ctx, identityID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			p = Guest(identityID)
		} else {
			return Profile{}, err
		}
	}
	if l.cache != nil {
		l.cache.Add(identityID, p)
	}
	return p, nil
}

// Invalidate drops the cached profile and notifies sibling processes.
func (l *Loader) Invalidate(ctx context.Context, identityID string) {
	if l.cache != nil {
		l.cache.Remove(identityID)
	}
	if l.redis != nil {
		if err := l.redis.Publish(ctx, invalidateChannel, identityID).Err(); err != nil && l.logger != nil {
			l.logger.Warn("publish profile invalidation", slog.Any("error", err))
		}
	}
}

// WatchInvalidations subscribes to the invalidation channel and evicts
// cached entries until ctx is cancelled. It is a no-op without redis.
func (l *Loader) WatchInvalidations(ctx context.Context) {
	if l.redis == nil || l.cache == nil {
		return
	}
	sub := l.redis.Subscribe(ctx, invalidateChannel)
	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				l.cache.Remove(msg.Payload)
			}
		}
	}()
}
