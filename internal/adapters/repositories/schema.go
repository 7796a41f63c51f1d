package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/obs"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// timeLayout stores instants as fixed-width UTC text so range comparisons
// work lexicographically on both SQLite and Postgres.
const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

// Initialize the database schema. Statements are valid for SQLite and Postgres.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createProvidersQuery := `
	CREATE TABLE IF NOT EXISTS providers (
		provider_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		home_name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		timezone TEXT NOT NULL DEFAULT 'UTC'
	);
	`

	createScheduleQuery := `
	CREATE TABLE IF NOT EXISTS schedule_windows (
		provider_id TEXT NOT NULL,
		weekday INTEGER NOT NULL,
		start_minute INTEGER NOT NULL,
		end_minute INTEGER NOT NULL,
		PRIMARY KEY (provider_id, weekday, start_minute)
	);
	`

	createBookingsQuery := `
	CREATE TABLE IF NOT EXISTS bookings (
		booking_id TEXT PRIMARY KEY,
		provider_id TEXT NOT NULL,
		starts_at TEXT NOT NULL,
		ends_at TEXT NOT NULL,
		location_name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL
	);
	`

	createBlocksQuery := `
	CREATE TABLE IF NOT EXISTS blocked_times (
		block_id TEXT PRIMARY KEY,
		provider_id TEXT NOT NULL,
		starts_at TEXT NOT NULL,
		ends_at TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT ''
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createIndexQueries := []string{
		`CREATE INDEX IF NOT EXISTS idx_bookings_provider_start ON bookings(provider_id, starts_at);`,
		`CREATE INDEX IF NOT EXISTS idx_blocked_times_provider_start ON blocked_times(provider_id, starts_at);`,
	}

	statements := append([]string{
		createProvidersQuery,
		createScheduleQuery,
		createBookingsQuery,
		createBlocksQuery,
		createDistanceCacheQuery,
	}, createIndexQueries...)

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type ProviderSeed struct {
	ProviderID string                         `json:"provider_id"`
	Name       string                         `json:"name"`
	Home       domain.NamedLocation           `json:"home"`
	Timezone   string                         `json:"timezone"`
	Schedule   map[string][]domain.WindowSpec `json:"schedule"`
	Bookings   []BookingSeed                  `json:"bookings"`
	Blocks     []BlockSeed                    `json:"blocks"`
}

type BookingSeed struct {
	BookingID string               `json:"booking_id"`
	Start     time.Time            `json:"start"`
	End       time.Time            `json:"end"`
	Location  domain.NamedLocation `json:"location"`
	Status    string               `json:"status"`
}

type BlockSeed struct {
	BlockID string    `json:"block_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Reason  string    `json:"reason"`
}

// Populate the database with provider data from a JSON file. Providers that
// already exist are left untouched, together with their bookings and blocks,
// so schedule updates made since the last seed survive a reseed.
func SeedFromJSON(ctx context.Context, repo *SQLRepository, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed providers: read %q: %w", jsonPath, err)
	}

	var data []ProviderSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed providers: parse json: %w", err)
	}

	for i, item := range data {
		if err := seedProvider(ctx, repo, item); err != nil {
			return fmt.Errorf("seed providers: item at index %d: %w", i+1, err)
		}
	}

	return nil
}

func seedProvider(ctx context.Context, repo *SQLRepository, item ProviderSeed) error {
	id := strings.TrimSpace(item.ProviderID)
	if id == "" {
		return errors.New("provider_id cannot be empty")
	}

	_, err := repo.GetProvider(ctx, id)
	if err == nil {
		obs.L().Debug("seed: provider exists, skipping", zap.String("provider_id", id))
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("provider %s: %w", id, err)
	}

	loc := time.UTC
	if item.Timezone != "" {
		if loc, err = time.LoadLocation(item.Timezone); err != nil {
			return fmt.Errorf("provider %s: %w", id, err)
		}
	}

	schedule, err := domain.ParseWeeklySchedule(item.Schedule)
	if err != nil {
		return fmt.Errorf("provider %s: %w", id, err)
	}

	p := &domain.Provider{
		ProviderID: id,
		Name:       item.Name,
		Home:       item.Home,
		Location:   loc,
		Schedule:   schedule,
	}
	if err := repo.SaveProvider(ctx, p); err != nil {
		return err
	}

	for _, b := range item.Bookings {
		booking := domain.Booking{
			BookingID:  b.BookingID,
			ProviderID: id,
			Start:      b.Start,
			End:        b.End,
			Location:   b.Location,
			Status:     domain.BookingStatus(b.Status),
		}
		if booking.BookingID == "" {
			booking.BookingID = uuid.NewString()
		}
		if err := repo.SaveBooking(ctx, booking); err != nil {
			return err
		}
	}

	for _, b := range item.Blocks {
		block := domain.Block{
			BlockID:    b.BlockID,
			ProviderID: id,
			Start:      b.Start,
			End:        b.End,
			Reason:     b.Reason,
		}
		if block.BlockID == "" {
			block.BlockID = uuid.NewString()
		}
		if err := repo.SaveBlock(ctx, block); err != nil {
			return err
		}
	}

	return nil
}

