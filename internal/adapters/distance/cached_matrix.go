package distance

import (
	"context"
	"fmt"

	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/obs"
	"visit-route-service/internal/ports"

	"go.uber.org/zap"
)

// CachedMatrixProvider serves matrices from a persistent pairwise cache and
// only calls the wrapped provider when a pair is missing.
type CachedMatrixProvider struct {
	inner ports.MatrixProvider
	cache ports.DistanceCache
}

func NewCachedMatrixProvider(inner ports.MatrixProvider, cache ports.DistanceCache) *CachedMatrixProvider {
	return &CachedMatrixProvider{inner: inner, cache: cache}
}

func (c *CachedMatrixProvider) Matrix(ctx context.Context, points []domain.Coordinates) (_ domain.DistanceMatrix, err error) {
	defer obs.Time(ctx, "distance.cached.Matrix")(&err)

	n := len(points)
	m := make(domain.DistanceMatrix, n)
	complete := true

	for i, origin := range points {
		hits, err := c.cache.GetMany(ctx, origin, points)
		if err != nil {
			return nil, fmt.Errorf("cached matrix: %w", err)
		}

		m[i] = make([]float64, n)
		for j, dest := range points {
			if i == j || origin == dest {
				continue
			}
			km, ok := hits[dest.Key()]
			if !ok {
				complete = false
				break
			}
			m[i][j] = km
		}
		if !complete {
			break
		}
	}

	if complete {
		return domain.NewDistanceMatrix(m)
	}

	fresh, err := c.inner.Matrix(ctx, points)
	if err != nil {
		return nil, err
	}

	for i, origin := range points {
		row := make(map[string]float64, n)
		for j, dest := range points {
			if i == j || origin == dest {
				continue
			}
			row[dest.Key()] = fresh[i][j]
		}
		if err := c.cache.PutMany(ctx, origin, row); err != nil {
			obs.L().Warn("distance cache write failed", zap.String("origin", origin.Key()), zap.Error(err))
		}
	}

	return fresh, nil
}
