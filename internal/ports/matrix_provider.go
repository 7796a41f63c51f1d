package ports

import (
	"context"
	"visit-route-service/internal/domain"
)

// Contract for building travel-distance matrices between locations.
type MatrixProvider interface {
	// Return the len(points) x len(points) distance matrix in kilometres.
	// points[0] is the depot.
	Matrix(ctx context.Context, points []domain.Coordinates) (domain.DistanceMatrix, error)
}

// Persistent store of pairwise distances for road-distance providers.
type DistanceCache interface {
	// Fetch cached distances for one origin and multiple destinations, keyed by destination Key().
	GetMany(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) (map[string]float64, error)
	// Store many distances for a single origin, keyed by destination Key().
	PutMany(ctx context.Context, origin domain.Coordinates, results map[string]float64) error
}
