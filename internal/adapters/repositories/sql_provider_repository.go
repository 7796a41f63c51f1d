package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"visit-route-service/internal/domain"
	"visit-route-service/internal/platform/db"
	"visit-route-service/internal/platform/obs"
)

// SQLRepository implements ports.ProviderRepository on SQLite or Postgres.
type SQLRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLRepository(conn *sql.DB, dialect db.Dialect) *SQLRepository {
	return &SQLRepository{DB: conn, Dialect: dialect}
}

func (r *SQLRepository) q(query string) string { return r.Dialect.Rebind(query) }

// Insert or update a provider together with its weekly schedule.
func (r *SQLRepository) SaveProvider(ctx context.Context, p *domain.Provider) (err error) {
	defer obs.Time(ctx, "repo.SaveProvider")(&err)

	if r.DB == nil {
		return errors.New("save provider: DB is nil")
	}
	if p == nil || strings.TrimSpace(p.ProviderID) == "" {
		return errors.New("save provider: provider id must not be empty")
	}
	if err := p.Home.Validate(); err != nil {
		return fmt.Errorf("save provider %s: %w", p.ProviderID, err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save provider: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.q(`
	INSERT INTO providers (provider_id, name, home_name, lat, lon, timezone)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (provider_id) DO UPDATE
	SET name = EXCLUDED.name,
		home_name = EXCLUDED.home_name,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		timezone = EXCLUDED.timezone;
	`), p.ProviderID, p.Name, p.Home.Name, p.Home.Lat, p.Home.Lon, p.Loc().String())
	if err != nil {
		return fmt.Errorf("save provider %s: %w", p.ProviderID, err)
	}

	if err := r.replaceSchedule(ctx, tx, p.ProviderID, p.Schedule); err != nil {
		return fmt.Errorf("save provider %s: %w", p.ProviderID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save provider: commit tx: %w", err)
	}
	return nil
}

// Retrieve one provider with its weekly schedule.
func (r *SQLRepository) GetProvider(ctx context.Context, providerID string) (_ *domain.Provider, err error) {
	defer obs.Time(ctx, "repo.GetProvider")(&err)

	if r.DB == nil {
		return nil, errors.New("get provider: DB is nil")
	}

	var (
		p  domain.Provider
		tz string
	)
	err = r.DB.QueryRowContext(ctx, r.q(`
	SELECT provider_id, name, home_name, lat, lon, timezone
	FROM providers
	WHERE provider_id = ?;
	`), providerID).Scan(&p.ProviderID, &p.Name, &p.Home.Name, &p.Home.Lat, &p.Home.Lon, &tz)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get provider %q: %w", providerID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get provider %q: %w", providerID, err)
	}

	if p.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("get provider %q: timezone: %w", providerID, err)
	}

	rows, err := r.DB.QueryContext(ctx, r.q(`
	SELECT weekday, start_minute, end_minute
	FROM schedule_windows
	WHERE provider_id = ?
	ORDER BY weekday, start_minute;
	`), providerID)
	if err != nil {
		return nil, fmt.Errorf("get provider %q: query schedule: %w", providerID, err)
	}
	defer rows.Close()

	days := make(map[domain.Weekday][]domain.TimeRange)
	for rows.Next() {
		var day, start, end int
		if err := rows.Scan(&day, &start, &end); err != nil {
			return nil, fmt.Errorf("get provider %q: scan schedule: %w", providerID, err)
		}
		wd := domain.Weekday(day)
		days[wd] = append(days[wd], domain.TimeRange{Start: domain.TimeOfDay(start), End: domain.TimeOfDay(end)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get provider %q: schedule rows: %w", providerID, err)
	}

	if p.Schedule, err = domain.NewWeeklySchedule(days); err != nil {
		return nil, fmt.Errorf("get provider %q: %w", providerID, err)
	}

	return &p, nil
}

func (r *SQLRepository) ListProviderIDs(ctx context.Context) (_ []string, err error) {
	defer obs.Time(ctx, "repo.ListProviderIDs")(&err)

	rows, err := r.DB.QueryContext(ctx, `SELECT provider_id FROM providers ORDER BY provider_id;`)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list providers: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list providers: rows: %w", err)
	}
	return ids, nil
}

// Replace the provider's weekly schedule. Returns domain.ErrNotFound for unknown providers.
func (r *SQLRepository) SaveSchedule(ctx context.Context, providerID string, schedule domain.WeeklySchedule) (err error) {
	defer obs.Time(ctx, "repo.SaveSchedule")(&err)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save schedule: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, r.q(`SELECT 1 FROM providers WHERE provider_id = ?;`), providerID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("save schedule %q: %w", providerID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("save schedule %q: %w", providerID, err)
	}

	if err := r.replaceSchedule(ctx, tx, providerID, schedule); err != nil {
		return fmt.Errorf("save schedule %q: %w", providerID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save schedule: commit tx: %w", err)
	}
	return nil
}

func (r *SQLRepository) replaceSchedule(ctx context.Context, tx *sql.Tx, providerID string, schedule domain.WeeklySchedule) error {
	if _, err := tx.ExecContext(ctx, r.q(`DELETE FROM schedule_windows WHERE provider_id = ?;`), providerID); err != nil {
		return fmt.Errorf("clear schedule: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, r.q(`
	INSERT INTO schedule_windows (provider_id, weekday, start_minute, end_minute)
	VALUES (?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("prepare schedule insert: %w", err)
	}
	defer stmt.Close()

	for _, day := range domain.AllWeekdays {
		for _, w := range schedule.Windows(day) {
			if _, err := stmt.ExecContext(ctx, providerID, int(day), int(w.Start), int(w.End)); err != nil {
				return fmt.Errorf("insert window %s %s: %w", day, w, err)
			}
		}
	}
	return nil
}

// Insert or update one booking.
func (r *SQLRepository) SaveBooking(ctx context.Context, b domain.Booking) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("save booking: %w", err)
	}

	_, err := r.DB.ExecContext(ctx, r.q(`
	INSERT INTO bookings (booking_id, provider_id, starts_at, ends_at, location_name, lat, lon, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (booking_id) DO UPDATE
	SET provider_id = EXCLUDED.provider_id,
		starts_at = EXCLUDED.starts_at,
		ends_at = EXCLUDED.ends_at,
		location_name = EXCLUDED.location_name,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		status = EXCLUDED.status;
	`),
		b.BookingID, b.ProviderID, formatTime(b.Start), formatTime(b.End),
		b.Location.Name, b.Location.Lat, b.Location.Lon, string(b.Status),
	)
	if err != nil {
		return fmt.Errorf("save booking %s: %w", b.BookingID, err)
	}
	return nil
}

// Insert or update one blocked interval.
func (r *SQLRepository) SaveBlock(ctx context.Context, b domain.Block) error {
	if !b.End.After(b.Start) {
		return fmt.Errorf("save block %s: end must be after start", b.BlockID)
	}

	_, err := r.DB.ExecContext(ctx, r.q(`
	INSERT INTO blocked_times (block_id, provider_id, starts_at, ends_at, reason)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (block_id) DO UPDATE
	SET provider_id = EXCLUDED.provider_id,
		starts_at = EXCLUDED.starts_at,
		ends_at = EXCLUDED.ends_at,
		reason = EXCLUDED.reason;
	`), b.BlockID, b.ProviderID, formatTime(b.Start), formatTime(b.End), b.Reason)
	if err != nil {
		return fmt.Errorf("save block %s: %w", b.BlockID, err)
	}
	return nil
}

// Bookings overlapping [from, to), ordered by start.
func (r *SQLRepository) ListBookings(ctx context.Context, providerID string, from, to time.Time) (_ []domain.Booking, err error) {
	defer obs.Time(ctx, "repo.ListBookings")(&err)

	rows, err := r.DB.QueryContext(ctx, r.q(`
	SELECT booking_id, provider_id, starts_at, ends_at, location_name, lat, lon, status
	FROM bookings
	WHERE provider_id = ? AND starts_at < ? AND ends_at > ?
	ORDER BY starts_at, booking_id;
	`), providerID, formatTime(to), formatTime(from))
	if err != nil {
		return nil, fmt.Errorf("list bookings %q: %w", providerID, err)
	}
	defer rows.Close()

	out := make([]domain.Booking, 0)
	for rows.Next() {
		var (
			b                  domain.Booking
			start, end, status string
		)
		if err := rows.Scan(
			&b.BookingID, &b.ProviderID, &start, &end,
			&b.Location.Name, &b.Location.Lat, &b.Location.Lon, &status,
		); err != nil {
			return nil, fmt.Errorf("list bookings %q: scan: %w", providerID, err)
		}
		if b.Start, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("list bookings %q: starts_at: %w", providerID, err)
		}
		if b.End, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("list bookings %q: ends_at: %w", providerID, err)
		}
		b.Status = domain.BookingStatus(status)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings %q: rows: %w", providerID, err)
	}
	return out, nil
}

// Blocked intervals overlapping [from, to), ordered by start.
func (r *SQLRepository) ListBlocks(ctx context.Context, providerID string, from, to time.Time) (_ []domain.Block, err error) {
	defer obs.Time(ctx, "repo.ListBlocks")(&err)

	rows, err := r.DB.QueryContext(ctx, r.q(`
	SELECT block_id, provider_id, starts_at, ends_at, reason
	FROM blocked_times
	WHERE provider_id = ? AND starts_at < ? AND ends_at > ?
	ORDER BY starts_at, block_id;
	`), providerID, formatTime(to), formatTime(from))
	if err != nil {
		return nil, fmt.Errorf("list blocks %q: %w", providerID, err)
	}
	defer rows.Close()

	out := make([]domain.Block, 0)
	for rows.Next() {
		var (
			b          domain.Block
			start, end string
		)
		if err := rows.Scan(&b.BlockID, &b.ProviderID, &start, &end, &b.Reason); err != nil {
			return nil, fmt.Errorf("list blocks %q: scan: %w", providerID, err)
		}
		if b.Start, err = parseTime(start); err != nil {
			return nil, fmt.Errorf("list blocks %q: starts_at: %w", providerID, err)
		}
		if b.End, err = parseTime(end); err != nil {
			return nil, fmt.Errorf("list blocks %q: ends_at: %w", providerID, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blocks %q: rows: %w", providerID, err)
	}
	return out, nil
}
