package cache

import (
	"context"
	"testing"
	"time"

	"visit-route-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouteCache(t *testing.T) (*RedisRouteCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRouteCache(client), mr
}

func TestRedisRouteCache(t *testing.T) {
	c, mr := setupRouteCache(t)
	ctx := context.Background()

	got, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got, "a miss is not an error")

	plan := &domain.VisitPlan{
		ProviderID: "p1",
		Date:       time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
		Depot:      domain.NamedLocation{Name: "Home", Coordinates: domain.Coordinates{Lat: 1, Lon: 2}},
		Stops: []domain.VisitStop{{
			BookingID:    "b1",
			Location:     domain.NamedLocation{Name: "A", Coordinates: domain.Coordinates{Lat: 1.5, Lon: 2}},
			LegKm:        55.6,
			CumulativeKm: 55.6,
		}},
		ReturnKm: 55.6,
		TotalKm:  111.2,
		Exact:    true,
	}
	require.NoError(t, c.Put(ctx, "k1", plan, time.Hour))

	got, err = c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, plan, got)

	mr.FastForward(2 * time.Hour)
	got, err = c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got, "entries expire after the ttl")
}

func TestRedisRouteCacheErrors(t *testing.T) {
	c, mr := setupRouteCache(t)
	ctx := context.Background()

	assert.Error(t, c.Put(ctx, "k", nil, time.Minute))

	mr.Set(routeKeyPrefix+"garbage", "not json")
	_, err := c.Get(ctx, "garbage")
	assert.Error(t, err)
}
