package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"visit-route-service/internal/domain"
)

type memRepo struct {
	mu        sync.Mutex
	providers map[string]*domain.Provider
	bookings  []domain.Booking
	blocks    []domain.Block
	err       error
}

func newMemRepo(providers ...*domain.Provider) *memRepo {
	r := &memRepo{providers: make(map[string]*domain.Provider)}
	for _, p := range providers {
		r.providers[p.ProviderID] = p
	}
	return r
}

func (r *memRepo) GetProvider(_ context.Context, id string) (*domain.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) ListProviderIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memRepo) SaveSchedule(_ context.Context, id string, s domain.WeeklySchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[id]
	if !ok {
		return fmt.Errorf("provider %q: %w", id, domain.ErrNotFound)
	}
	p.Schedule = s
	return nil
}

func (r *memRepo) ListBookings(_ context.Context, id string, from, to time.Time) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if b.ProviderID == id && b.Start.Before(to) && b.End.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memRepo) ListBlocks(_ context.Context, id string, from, to time.Time) ([]domain.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Block, 0)
	for _, b := range r.blocks {
		if b.ProviderID == id && b.Start.Before(to) && b.End.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

// countingMatrix wraps the great-circle matrix and counts calls.
type countingMatrix struct {
	mu    sync.Mutex
	calls int
}

func (c *countingMatrix) Matrix(_ context.Context, points []domain.Coordinates) (domain.DistanceMatrix, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return domain.HaversineMatrix(points), nil
}

type memRouteCache struct {
	mu    sync.Mutex
	plans map[string]*domain.VisitPlan
}

func newMemRouteCache() *memRouteCache {
	return &memRouteCache{plans: make(map[string]*domain.VisitPlan)}
}

func (c *memRouteCache) Get(_ context.Context, key string) (*domain.VisitPlan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plans[key], nil
}

func (c *memRouteCache) Put(_ context.Context, key string, plan *domain.VisitPlan, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[key] = plan
	return nil
}
