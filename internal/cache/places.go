// Package cache holds the optional Redis-backed cache of provider place
// records.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"

	"github.com/WanderLanka/wanderlanka-web-app-sub002/internal/maps"
)

// DefaultTTL is how long a place record stays cached.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "wanderlanka:place:"

// PlaceCache caches maps.Place records as JSON in Redis.
type PlaceCache struct {
	client *redis.Client
	cache  *cache.Cache[string]
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, address, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", address, err)
	}
	return client, nil
}

// NewPlaceCache creates a cache over an existing Redis client.
func NewPlaceCache(client *redis.Client, ttl time.Duration) *PlaceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	redisStore := redisstore.NewRedis(client, store.WithExpiration(ttl))
	return &PlaceCache{client: client, cache: cache.New[string](redisStore)}
}

// Ping checks that Redis is reachable.
func (c *PlaceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the cached place, or (nil, nil) on a miss.
func (c *PlaceCache) Get(ctx context.Context, placeID string) (*maps.Place, error) {
	value, err := c.cache.Get(ctx, keyPrefix+placeID)
	if err != nil {
		if errors.Is(err, store.NotFound{}) || errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached place %s: %w", placeID, err)
	}

	var place maps.Place
	if err := json.Unmarshal([]byte(value), &place); err != nil {
		return nil, fmt.Errorf("decode cached place %s: %w", placeID, err)
	}
	return &place, nil
}

// Set stores place under its id.
func (c *PlaceCache) Set(ctx context.Context, place *maps.Place) error {
	if place == nil || place.PlaceID == "" {
		return fmt.Errorf("cannot cache place without id")
	}
	data, err := json.Marshal(place)
	if err != nil {
		return fmt.Errorf("encode place %s: %w", place.PlaceID, err)
	}
	if err := c.cache.Set(ctx, keyPrefix+place.PlaceID, string(data)); err != nil {
		return fmt.Errorf("cache place %s: %w", place.PlaceID, err)
	}
	return nil
}
