package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"visit-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acceptedBooking(providerID, id string, start time.Time, lat, lon float64) domain.Booking {
	return domain.Booking{
		BookingID:  id,
		ProviderID: providerID,
		Start:      start,
		End:        start.Add(time.Hour),
		Location:   domain.NamedLocation{Name: id, Coordinates: domain.Coordinates{Lat: lat, Lon: lon}},
		Status:     domain.BookingAccepted,
	}
}

func TestPlannerPlanVisits(t *testing.T) {
	p := denverProvider(t)
	repo := newMemRepo(p)
	day := time.Date(2026, 11, 2, 8, 0, 0, 0, p.Location)

	repo.bookings = []domain.Booking{
		acceptedBooking("p1", "far", day, 39.80, -104.90),
		acceptedBooking("p1", "near", day.Add(time.Hour), 39.74, -104.98),
		{
			BookingID: "pending", ProviderID: "p1", Start: day.Add(2 * time.Hour), End: day.Add(3 * time.Hour),
			Location: domain.NamedLocation{Coordinates: domain.Coordinates{Lat: 45, Lon: -100}}, Status: domain.BookingPending,
		},
		acceptedBooking("p1", "next-day", day.AddDate(0, 0, 1), 39.7, -105.0),
	}

	matrix := &countingMatrix{}
	cache := newMemRouteCache()
	planner := NewPlanner(repo, matrix, WithRouteCache(cache, time.Hour))

	plan, err := planner.PlanVisits(context.Background(), "p1", time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, plan.Stops, 2)
	ids := []string{plan.Stops[0].BookingID, plan.Stops[1].BookingID}
	assert.ElementsMatch(t, []string{"far", "near"}, ids)
	assert.True(t, plan.Exact)
	assert.Equal(t, "p1", plan.ProviderID)
	assert.Equal(t, "2026-11-02", plan.Date.Format(time.DateOnly))
	assert.InDelta(t, plan.Stops[1].CumulativeKm+plan.ReturnKm, plan.TotalKm, 1e-9)
	assert.Equal(t, 1, matrix.calls)

	again, err := planner.PlanVisits(context.Background(), "p1", time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, plan, again)
	assert.Equal(t, 1, matrix.calls, "second plan is served from the cache")

	repo.bookings = append(repo.bookings, acceptedBooking("p1", "late", day.Add(3*time.Hour), 39.75, -105.02))
	plan, err = planner.PlanVisits(context.Background(), "p1", time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, plan.Stops, 3)
	assert.Equal(t, 2, matrix.calls, "a new booking invalidates the cached plan")
}

func TestPlannerRouteCacheSeparatesSources(t *testing.T) {
	p := denverProvider(t)
	repo := newMemRepo(p)
	day := time.Date(2026, 11, 2, 8, 0, 0, 0, p.Location)
	repo.bookings = []domain.Booking{acceptedBooking("p1", "a", day, 39.75, -104.95)}

	cache := newMemRouteCache()
	matrix := &countingMatrix{}
	date := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	_, err := NewPlanner(repo, matrix, WithRouteCache(cache, time.Hour), WithMatrixSource("haversine")).
		PlanVisits(context.Background(), "p1", date)
	require.NoError(t, err)
	_, err = NewPlanner(repo, matrix, WithRouteCache(cache, time.Hour), WithMatrixSource("ors")).
		PlanVisits(context.Background(), "p1", date)
	require.NoError(t, err)

	assert.Equal(t, 2, matrix.calls, "a plan cached for one distance source is not reused by another")
	assert.Len(t, cache.plans, 2)
}

func TestPlannerPlanVisitsToday(t *testing.T) {
	p := denverProvider(t)
	repo := newMemRepo(p)
	monday := time.Date(2026, 11, 2, 8, 0, 0, 0, p.Location)
	repo.bookings = []domain.Booking{acceptedBooking("p1", "a", monday, 39.75, -104.95)}

	planner := NewPlanner(repo, &countingMatrix{})
	// Tuesday in UTC, still Monday evening in Denver.
	planner.now = func() time.Time { return time.Date(2026, 11, 3, 5, 0, 0, 0, time.UTC) }

	plan, err := planner.PlanVisits(context.Background(), "p1", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2026-11-02", plan.Date.Format(time.DateOnly))
	assert.Len(t, plan.Stops, 1)
}

func TestPlannerPlanVisitsNoBookings(t *testing.T) {
	p := denverProvider(t)
	planner := NewPlanner(newMemRepo(p), &countingMatrix{})

	plan, err := planner.PlanVisits(context.Background(), "p1", time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, plan.Stops)
	assert.Zero(t, plan.TotalKm)
	assert.Equal(t, p.Home, plan.Depot)
}

func TestPlannerPlanVisitsUnknownProvider(t *testing.T) {
	planner := NewPlanner(newMemRepo(), &countingMatrix{})
	_, err := planner.PlanVisits(context.Background(), "ghost", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlannerOptimizeAdHoc(t *testing.T) {
	planner := NewPlanner(nil, &countingMatrix{}, WithPlannerMaxExactStops(3))
	depot := domain.NamedLocation{Name: "depot"}

	stops := make([]domain.BookingLocation, 0, 4)
	for i := 1; i <= 4; i++ {
		stops = append(stops, domain.BookingLocation{
			BookingID:     fmt.Sprintf("s%d", i),
			NamedLocation: domain.NamedLocation{Coordinates: domain.Coordinates{Lat: float64(i) / 10, Lon: float64(i%2) / 10}},
		})
	}

	_, err := planner.OptimizeAdHoc(context.Background(), depot, stops, ModeExact)
	assert.ErrorIs(t, err, domain.ErrOversizedBookingSet)

	plan, err := planner.OptimizeAdHoc(context.Background(), depot, stops, ModeAuto)
	require.NoError(t, err)
	assert.False(t, plan.Exact)
	assert.Len(t, plan.Stops, 4)

	plan, err = planner.OptimizeAdHoc(context.Background(), depot, stops[:3], ModeExact)
	require.NoError(t, err)
	assert.True(t, plan.Exact)

	many := make([]domain.BookingLocation, 0, 6)
	for i := 0; i < 6; i++ {
		many = append(many, domain.BookingLocation{BookingID: fmt.Sprintf("m%d", i)})
	}
	capped := NewPlanner(nil, &countingMatrix{}, WithPlannerMaxStops(5))
	_, err = capped.OptimizeAdHoc(context.Background(), depot, many, ModeHeuristic)
	assert.ErrorIs(t, err, domain.ErrTooManyStops)

	bad := []domain.BookingLocation{{BookingID: "x", NamedLocation: domain.NamedLocation{Coordinates: domain.Coordinates{Lat: 91}}}}
	_, err = planner.OptimizeAdHoc(context.Background(), depot, bad, ModeExact)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
}

func TestPlannerPlanDay(t *testing.T) {
	small := denverProvider(t)
	big := denverProvider(t)
	big.ProviderID = "p2"

	repo := newMemRepo(small, big)
	day := time.Date(2026, 11, 2, 8, 0, 0, 0, small.Location)
	repo.bookings = append(repo.bookings, acceptedBooking("p1", "a", day, 39.75, -104.95))
	for i := 0; i < DefaultMaxExactStops+1; i++ {
		repo.bookings = append(repo.bookings,
			acceptedBooking("p2", fmt.Sprintf("b%d", i), day.Add(time.Duration(i)*time.Minute), 39.7+float64(i)/100, -105))
	}

	planner := NewPlanner(repo, &countingMatrix{}, WithWorkers(2))
	results, err := planner.PlanDay(context.Background(), time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "p1", results[0].ProviderID)
	require.NoError(t, results[0].Err)
	assert.Len(t, results[0].Plan.Stops, 1)

	assert.Equal(t, "p2", results[1].ProviderID)
	assert.ErrorIs(t, results[1].Err, domain.ErrOversizedBookingSet)
	assert.Nil(t, results[1].Plan)
}

func TestRouteKeyChangesWithStops(t *testing.T) {
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	depot := domain.Coordinates{Lat: 1, Lon: 1}
	a := domain.BookingLocation{BookingID: "a", NamedLocation: domain.NamedLocation{Coordinates: domain.Coordinates{Lat: 2}}}
	b := domain.BookingLocation{BookingID: "b", NamedLocation: domain.NamedLocation{Coordinates: domain.Coordinates{Lat: 3}}}

	k1 := RouteKey("p1", day, "haversine", ModeExact, depot, []domain.BookingLocation{a, b})
	assert.Equal(t, k1, RouteKey("p1", day, "haversine", ModeExact, depot, []domain.BookingLocation{a, b}))
	assert.NotEqual(t, k1, RouteKey("p1", day, "haversine", ModeExact, depot, []domain.BookingLocation{a}))
	assert.NotEqual(t, k1, RouteKey("p1", day, "haversine", ModeAuto, depot, []domain.BookingLocation{a, b}))
	assert.NotEqual(t, k1, RouteKey("p1", day.AddDate(0, 0, 1), "haversine", ModeExact, depot, []domain.BookingLocation{a, b}))

	assert.NotEqual(t, k1, RouteKey("p1", day, "ors", ModeExact, depot, []domain.BookingLocation{a, b}))

	moved := b
	moved.Lat = 3.5
	assert.NotEqual(t, k1, RouteKey("p1", day, "haversine", ModeExact, depot, []domain.BookingLocation{a, moved}))
}
