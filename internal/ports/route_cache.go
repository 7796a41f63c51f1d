package ports

import (
	"context"
	"time"
	"visit-route-service/internal/domain"
)

// Cache of computed visit plans. Implementations must treat a miss as (nil, nil).
type RouteCache interface {
	Get(ctx context.Context, key string) (*domain.VisitPlan, error)
	Put(ctx context.Context, key string, plan *domain.VisitPlan, ttl time.Duration) error
}
