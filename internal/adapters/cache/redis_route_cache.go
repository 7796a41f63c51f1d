package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

const routeKeyPrefix = "visit-route:plan:"

// RedisRouteCache stores computed visit plans as JSON.
type RedisRouteCache struct {
	Client *redis.Client
}

func NewRedisRouteCache(client *redis.Client) *RedisRouteCache {
	return &RedisRouteCache{Client: client}
}

func (c *RedisRouteCache) Get(ctx context.Context, key string) (_ *domain.VisitPlan, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	raw, err := c.Client.Get(ctx, routeKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("route cache get: %w", err)
	}

	var plan domain.VisitPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("route cache decode: %w", err)
	}
	return &plan, nil
}

func (c *RedisRouteCache) Put(ctx context.Context, key string, plan *domain.VisitPlan, ttl time.Duration) (err error) {
	defer obs.Time(ctx, "route.cache.Put")(&err)

	if plan == nil {
		return errors.New("route cache put: plan is nil")
	}

	raw, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("route cache encode: %w", err)
	}
	if err := c.Client.Set(ctx, routeKeyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("route cache set: %w", err)
	}
	return nil
}
