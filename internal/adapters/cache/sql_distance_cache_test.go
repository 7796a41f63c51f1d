package cache

import (
	"context"
	"testing"

	"visit-route-service/internal/adapters/repositories"
	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDistanceCache(t *testing.T) *SQLDistanceCache {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, repositories.InitSchema(context.Background(), conn))
	return NewSQLDistanceCache(conn, db.SQLite)
}

func TestSQLDistanceCacheRoundTrip(t *testing.T) {
	c := setupDistanceCache(t)
	ctx := context.Background()

	origin := domain.Coordinates{Lat: 39.7392, Lon: -104.9903}
	a := domain.Coordinates{Lat: 39.7312, Lon: -104.9826}
	b := domain.Coordinates{Lat: 39.7626, Lon: -105.0112}

	hits, err := c.GetMany(ctx, origin, []domain.Coordinates{a, b})
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, c.PutMany(ctx, origin, map[string]float64{a.Key(): 1.25}))

	hits, err = c.GetMany(ctx, origin, []domain.Coordinates{a, b, a})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{a.Key(): 1.25}, hits)

	require.NoError(t, c.PutMany(ctx, origin, map[string]float64{a.Key(): 1.5, b.Key(): 3}))
	hits, err = c.GetMany(ctx, origin, []domain.Coordinates{a, b})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{a.Key(): 1.5, b.Key(): 3}, hits, "existing pairs are overwritten")

	hits, err = c.GetMany(ctx, a, []domain.Coordinates{origin})
	require.NoError(t, err)
	assert.Empty(t, hits, "pairs are directional")
}

func TestSQLDistanceCacheEmptyInputs(t *testing.T) {
	c := setupDistanceCache(t)
	ctx := context.Background()

	hits, err := c.GetMany(ctx, domain.Coordinates{}, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.NoError(t, c.PutMany(ctx, domain.Coordinates{}, nil))
	assert.Error(t, c.PutMany(ctx, domain.Coordinates{}, map[string]float64{" ": 1}))
}
