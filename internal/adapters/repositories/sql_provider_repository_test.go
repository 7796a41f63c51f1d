package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) *SQLRepository {
	t.Helper()
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, InitSchema(context.Background(), conn))
	return NewSQLRepository(conn, db.SQLite)
}

func testProvider(t *testing.T) *domain.Provider {
	t.Helper()
	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)

	s, err := domain.NewWeeklySchedule(map[domain.Weekday][]domain.TimeRange{
		domain.Monday:   {{Start: domain.Clock(13, 0), End: domain.Clock(17, 0)}, {Start: domain.Clock(8, 0), End: domain.Clock(12, 0)}},
		domain.Saturday: {{Start: domain.Clock(9, 0), End: domain.Clock(11, 30)}},
	})
	require.NoError(t, err)

	return &domain.Provider{
		ProviderID: "p1",
		Name:       "Mobile Groomer",
		Home:       domain.NamedLocation{Name: "Home", Coordinates: domain.Coordinates{Lat: 39.7392, Lon: -104.9903}},
		Location:   loc,
		Schedule:   s,
	}
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	repo := setupTestRepo(t)
	assert.NoError(t, InitSchema(context.Background(), repo.DB))
}

func TestSaveAndGetProvider(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	p := testProvider(t)

	require.NoError(t, repo.SaveProvider(ctx, p))

	got, err := repo.GetProvider(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Home, got.Home)
	assert.Equal(t, "America/Denver", got.Loc().String())
	assert.Equal(t, p.Schedule.Days(), got.Schedule.Days())

	p.Name = "Renamed"
	require.NoError(t, repo.SaveProvider(ctx, p))
	got, err = repo.GetProvider(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	ids, err := repo.ListProviderIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)
}

func TestGetProviderNotFound(t *testing.T) {
	repo := setupTestRepo(t)
	_, err := repo.GetProvider(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveSchedule(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.SaveProvider(ctx, testProvider(t)))

	s, err := domain.NewWeeklySchedule(map[domain.Weekday][]domain.TimeRange{
		domain.Tuesday: {{Start: domain.Clock(10, 0), End: domain.Clock(14, 0)}},
	})
	require.NoError(t, err)
	require.NoError(t, repo.SaveSchedule(ctx, "p1", s))

	got, err := repo.GetProvider(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got.Schedule.Windows(domain.Monday))
	assert.Equal(t, s.Windows(domain.Tuesday), got.Schedule.Windows(domain.Tuesday))

	assert.ErrorIs(t, repo.SaveSchedule(ctx, "ghost", s), domain.ErrNotFound)
}

func TestListBookingsAndBlocksByRange(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	p := testProvider(t)
	require.NoError(t, repo.SaveProvider(ctx, p))

	day := time.Date(2026, 11, 2, 0, 0, 0, 0, p.Location)
	loc := domain.NamedLocation{Name: "A", Coordinates: domain.Coordinates{Lat: 39.73, Lon: -104.98}}

	bookings := []domain.Booking{
		{BookingID: "b2", ProviderID: "p1", Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour), Location: loc, Status: domain.BookingAccepted},
		{BookingID: "b1", ProviderID: "p1", Start: day.Add(8 * time.Hour), End: day.Add(9 * time.Hour), Location: loc, Status: domain.BookingPending},
		{BookingID: "prev", ProviderID: "p1", Start: day.Add(-2 * time.Hour), End: day.Add(-time.Hour), Location: loc, Status: domain.BookingAccepted},
		{BookingID: "other", ProviderID: "p2", Start: day.Add(8 * time.Hour), End: day.Add(9 * time.Hour), Location: loc, Status: domain.BookingAccepted},
	}
	for _, b := range bookings {
		require.NoError(t, repo.SaveBooking(ctx, b))
	}
	require.NoError(t, repo.SaveBlock(ctx, domain.Block{
		BlockID: "x", ProviderID: "p1", Start: day.Add(-time.Hour), End: day.Add(time.Hour), Reason: "errand",
	}))

	got, err := repo.ListBookings(ctx, "p1", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b1", got[0].BookingID)
	assert.Equal(t, domain.BookingPending, got[0].Status)
	assert.True(t, got[0].Start.Equal(day.Add(8*time.Hour)))
	assert.Equal(t, loc, got[0].Location)
	assert.Equal(t, "b2", got[1].BookingID)

	blocks, err := repo.ListBlocks(ctx, "p1", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, blocks, 1, "blocks straddling the range start are included")
	assert.Equal(t, "errand", blocks[0].Reason)

	assert.Error(t, repo.SaveBooking(ctx, domain.Booking{BookingID: "bad", Start: day, End: day, Location: loc, Status: domain.BookingAccepted}))
}

func TestSeedFromJSON(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	seed := `[
	  {
	    "provider_id": "seed-1",
	    "name": "Seeded",
	    "home": {"name": "Base", "lat": 40.0, "lon": -105.0},
	    "timezone": "America/Denver",
	    "schedule": {"monday": [{"start": "08:00", "end": "12:00"}]},
	    "bookings": [
	      {"start": "2026-11-02T15:00:00Z", "end": "2026-11-02T16:00:00Z",
	       "location": {"name": "A", "lat": 40.01, "lon": -105.01}, "status": "accepted"}
	    ],
	    "blocks": [{"block_id": "b", "start": "2026-11-02T17:00:00Z", "end": "2026-11-02T18:00:00Z"}]
	  }
	]`
	path := filepath.Join(t.TempDir(), "providers.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	require.NoError(t, SeedFromJSON(ctx, repo, path))
	// Seeding twice must not duplicate rows, even for generated ids.
	require.NoError(t, SeedFromJSON(ctx, repo, path))

	p, err := repo.GetProvider(ctx, "seed-1")
	require.NoError(t, err)
	assert.Len(t, p.Schedule.Windows(domain.Monday), 1)

	from := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	bookings, err := repo.ListBookings(ctx, "seed-1", from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.NotEmpty(t, bookings[0].BookingID, "missing ids are generated")

	blocks, err := repo.ListBlocks(ctx, "seed-1", from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
}

func TestSeedFromJSONKeepsUpdatedSchedule(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	seed := `[{"provider_id": "seed-2", "home": {"lat": 40, "lon": -105},
	  "schedule": {"monday": [{"start": "08:00", "end": "12:00"}]}}]`
	path := filepath.Join(t.TempDir(), "providers.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))
	require.NoError(t, SeedFromJSON(ctx, repo, path))

	updated, err := domain.NewWeeklySchedule(map[domain.Weekday][]domain.TimeRange{
		domain.Friday: {{Start: domain.Clock(10, 0), End: domain.Clock(14, 0)}},
	})
	require.NoError(t, err)
	require.NoError(t, repo.SaveSchedule(ctx, "seed-2", updated))

	require.NoError(t, SeedFromJSON(ctx, repo, path))

	p, err := repo.GetProvider(ctx, "seed-2")
	require.NoError(t, err)
	assert.Empty(t, p.Schedule.Windows(domain.Monday), "reseeding does not restore the seeded schedule")
	assert.Equal(t, updated.Windows(domain.Friday), p.Schedule.Windows(domain.Friday))
}

func TestSeedFromJSONRejectsInvalidSchedule(t *testing.T) {
	repo := setupTestRepo(t)
	seed := `[{"provider_id": "x", "home": {"lat": 1, "lon": 1},
	  "schedule": {"monday": [{"start": "12:00", "end": "08:00"}]}}]`
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	err := SeedFromJSON(context.Background(), repo, path)
	assert.ErrorIs(t, err, domain.ErrInvalidScheduleWindow)
}
