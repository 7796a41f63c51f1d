package services

import (
	"context"
	"fmt"
	"time"

	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/obs"
	"visit-route-service/internal/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Planner turns a provider's accepted bookings into an ordered visit plan.
type Planner struct {
	repo     ports.ProviderRepository
	matrix   ports.MatrixProvider
	cache    ports.RouteCache
	cacheTTL time.Duration
	source   string
	mode     Mode
	maxExact int
	maxStops int
	workers  int
	now      func() time.Time
}

type PlannerOption func(*Planner)

// WithRouteCache enables caching of computed plans. A nil cache disables it.
func WithRouteCache(c ports.RouteCache, ttl time.Duration) PlannerOption {
	return func(p *Planner) {
		p.cache = c
		p.cacheTTL = ttl
	}
}

// WithMatrixSource names the distance source so cached plans computed with
// another source are never served.
func WithMatrixSource(name string) PlannerOption {
	return func(p *Planner) { p.source = name }
}

func WithPlannerMode(m Mode) PlannerOption {
	return func(p *Planner) { p.mode = m }
}

func WithPlannerMaxExactStops(n int) PlannerOption {
	return func(p *Planner) {
		if n > 0 {
			p.maxExact = n
		}
	}
}

// WithPlannerMaxStops bounds the stops of a single plan in any mode.
func WithPlannerMaxStops(n int) PlannerOption {
	return func(p *Planner) {
		if n > 0 {
			p.maxStops = n
		}
	}
}

// WithWorkers bounds the number of providers PlanDay optimizes at once.
func WithWorkers(n int) PlannerOption {
	return func(p *Planner) {
		if n > 0 {
			p.workers = n
		}
	}
}

func NewPlanner(repo ports.ProviderRepository, matrix ports.MatrixProvider, opts ...PlannerOption) *Planner {
	p := &Planner{
		repo:     repo,
		matrix:   matrix,
		mode:     ModeExact,
		maxExact: DefaultMaxExactStops,
		maxStops: DefaultMaxStops,
		workers:  4,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlanVisits plans the route over the provider's accepted bookings on the
// calendar day of date, starting and ending at the provider's home. A zero
// date means today in the provider's time zone.
func (p *Planner) PlanVisits(ctx context.Context, providerID string, date time.Time) (_ *domain.VisitPlan, err error) {
	defer obs.Time(ctx, "planner.PlanVisits")(&err)

	prov, err := p.repo.GetProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("plan visits: %w", err)
	}

	day := resolveDay(date, prov.Loc(), p.now)
	bookings, err := p.repo.ListBookings(ctx, providerID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("plan visits: load bookings: %w", err)
	}
	stops := domain.RouteStops(bookings)

	key := RouteKey(providerID, day, p.source, p.mode, prov.Home.Coordinates, stops)
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, key)
		if err != nil {
			obs.L().Warn("route cache read failed", zap.String("key", key), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	plan, err := p.plan(ctx, providerID, day, prov.Home, stops, p.mode)
	if err != nil {
		return nil, fmt.Errorf("plan visits %s: %w", providerID, err)
	}

	if p.cache != nil {
		if err := p.cache.Put(ctx, key, plan, p.cacheTTL); err != nil {
			obs.L().Warn("route cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return plan, nil
}

// OptimizeAdHoc plans a route over caller-supplied locations without
// touching stored bookings.
func (p *Planner) OptimizeAdHoc(
	ctx context.Context,
	depot domain.NamedLocation,
	stops []domain.BookingLocation,
	mode Mode,
) (_ *domain.VisitPlan, err error) {
	defer obs.Time(ctx, "planner.OptimizeAdHoc")(&err)

	if err := depot.Validate(); err != nil {
		return nil, fmt.Errorf("optimize: depot: %w", err)
	}
	for i, s := range stops {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("optimize: stop %d: %w", i, err)
		}
	}

	plan, err := p.plan(ctx, "", time.Time{}, depot, stops, mode)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	return plan, nil
}

func (p *Planner) plan(
	ctx context.Context,
	providerID string,
	day time.Time,
	depot domain.NamedLocation,
	stops []domain.BookingLocation,
	mode Mode,
) (*domain.VisitPlan, error) {
	if len(stops) > p.maxStops {
		return nil, &domain.TooManyStopsError{Stops: len(stops), Max: p.maxStops}
	}

	points := make([]domain.Coordinates, 0, len(stops)+1)
	points = append(points, depot.Coordinates)
	for _, s := range stops {
		points = append(points, s.Coordinates)
	}

	m, err := p.matrix.Matrix(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("distance matrix: %w", err)
	}

	route, err := OptimizeRoute(ctx, m, WithMode(mode), WithMaxExactStops(p.maxExact), WithMaxStops(p.maxStops))
	if err != nil {
		return nil, err
	}

	return domain.NewVisitPlan(providerID, day, depot, stops, m, route)
}

// DayPlan is the outcome of planning one provider in PlanDay.
type DayPlan struct {
	ProviderID string
	Plan       *domain.VisitPlan
	Err        error
}

// PlanDay plans every provider for the calendar day of date with at most
// the configured number of optimizations in flight. A failure for one
// provider is reported in its DayPlan and does not stop the others.
func (p *Planner) PlanDay(ctx context.Context, date time.Time) (_ []DayPlan, err error) {
	defer obs.Time(ctx, "planner.PlanDay")(&err)

	ids, err := p.repo.ListProviderIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan day: list providers: %w", err)
	}

	out := make([]DayPlan, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plan, err := p.PlanVisits(gctx, id, date)
			out[i] = DayPlan{ProviderID: id, Plan: plan, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, fmt.Errorf("plan day: %w", err)
	}
	return out, nil
}
