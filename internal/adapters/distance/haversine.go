package distance

import (
	"context"
	"fmt"

	"visit-route-service/internal/domain"
)

// HaversineProvider computes straight-line great-circle distances offline.
type HaversineProvider struct{}

func NewHaversineProvider() *HaversineProvider { return &HaversineProvider{} }

func (HaversineProvider) Matrix(ctx context.Context, points []domain.Coordinates) (domain.DistanceMatrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("haversine matrix: point %d: %w", i, err)
		}
	}
	return domain.HaversineMatrix(points), nil
}
