package cache

import (
	"batch-route-service/internal/domain"
	"batch-route-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "route:"

// RedisRouteCache is a shared route cache for multi-node deployments.
// Entries expire after TTL; zero TTL means no expiry.
type RedisRouteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, TTL: ttl}
}

// Fetch one cached route. A missing key is (nil, false, nil).
func (r *RedisRouteCache) Get(
	ctx context.Context,
	key ports.RouteKey,
) (*domain.Route, bool, error) {
	if r.Client == nil {
		return nil, false, errors.New("route cache: redis client is nil")
	}

	payload, err := r.Client.Get(ctx, redisKeyPrefix+key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get route cache: redis get: %w", err)
	}

	route, err := decodeRoute(payload)
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	return route, true, nil
}

// Store one computed route.
func (r *RedisRouteCache) Put(
	ctx context.Context,
	key ports.RouteKey,
	route *domain.Route,
) error {
	if r.Client == nil {
		return errors.New("route cache: redis client is nil")
	}

	if route == nil {
		return errors.New("insert route cache: route must be non-nil")
	}

	payload, err := encodeRoute(route)
	if err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	if err := r.Client.Set(ctx, redisKeyPrefix+key.String(), payload, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert route cache key=%q: redis set: %w", key.String(), err)
	}

	return nil
}
