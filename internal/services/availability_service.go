package services

import (
	"context"
	"fmt"
	"time"

	"visit-route-service/internal/domain"
	"visit-route-service/internal/ports"
)

// AvailabilityService answers slot queries for stored providers.
type AvailabilityService struct {
	repo          ports.ProviderRepository
	lookAheadDays int
	now           func() time.Time
}

func NewAvailabilityService(repo ports.ProviderRepository, lookAheadDays int) *AvailabilityService {
	if lookAheadDays <= 0 {
		lookAheadDays = DefaultLookAheadDays
	}
	return &AvailabilityService{repo: repo, lookAheadDays: lookAheadDays, now: time.Now}
}

// calendarDay reads the calendar date of t and anchors it at midnight in loc.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// resolveDay is calendarDay with the zero date meaning today in loc.
func resolveDay(date time.Time, loc *time.Location, now func() time.Time) time.Time {
	if date.IsZero() {
		date = now().In(loc)
	}
	return calendarDay(date, loc)
}

func (s *AvailabilityService) availability(
	ctx context.Context,
	p *domain.Provider,
	from, to time.Time,
) (domain.Availability, error) {
	bookings, err := s.repo.ListBookings(ctx, p.ProviderID, from, to)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("load bookings: %w", err)
	}
	blocks, err := s.repo.ListBlocks(ctx, p.ProviderID, from, to)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("load blocks: %w", err)
	}
	return p.Availability(bookings, blocks), nil
}

// SlotsOnDate lists the free slots of the provider on the calendar day of
// date, interpreted in the provider's time zone. A zero date means today.
func (s *AvailabilityService) SlotsOnDate(ctx context.Context, providerID string, date time.Time) ([]domain.Slot, error) {
	p, err := s.repo.GetProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("slots on date: %w", err)
	}

	day := resolveDay(date, p.Loc(), s.now)
	av, err := s.availability(ctx, p, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("slots on date: %w", err)
	}

	return AvailableSlotsOnDate(av, day), nil
}

// NextSlots returns the first n free slots starting at or after the instant
// from; a zero from means now. When the look-ahead runs out the slots found
// so far are returned with a *domain.NoAvailabilityError.
func (s *AvailabilityService) NextSlots(ctx context.Context, providerID string, from time.Time, n int) ([]domain.Slot, error) {
	p, err := s.repo.GetProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("next slots: %w", err)
	}

	if from.IsZero() {
		from = s.now()
	}
	return s.nextSlots(ctx, p, from.In(p.Loc()), n)
}

// NextSlotsFromDate is NextSlots starting at midnight of date's calendar day
// in the provider's time zone. A zero date means today.
func (s *AvailabilityService) NextSlotsFromDate(ctx context.Context, providerID string, date time.Time, n int) ([]domain.Slot, error) {
	p, err := s.repo.GetProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("next slots: %w", err)
	}

	return s.nextSlots(ctx, p, resolveDay(date, p.Loc(), s.now), n)
}

// nextSlots searches from the local instant from, which must be in p's zone.
func (s *AvailabilityService) nextSlots(ctx context.Context, p *domain.Provider, from time.Time, n int) ([]domain.Slot, error) {
	day := calendarDay(from, p.Loc())
	av, err := s.availability(ctx, p, day, day.AddDate(0, 0, s.lookAheadDays))
	if err != nil {
		return nil, fmt.Errorf("next slots: %w", err)
	}

	slots, err := NextNSlots(av, day, n, WithLookAheadDays(s.lookAheadDays), WithNotBefore(from))
	if err != nil {
		return slots, fmt.Errorf("next slots: %w", err)
	}
	return slots, nil
}

// UpdateSchedule validates and stores a new weekly schedule.
func (s *AvailabilityService) UpdateSchedule(
	ctx context.Context,
	providerID string,
	spec map[string][]domain.WindowSpec,
) (domain.WeeklySchedule, error) {
	schedule, err := domain.ParseWeeklySchedule(spec)
	if err != nil {
		return domain.WeeklySchedule{}, fmt.Errorf("update schedule: %w", err)
	}
	if err := s.repo.SaveSchedule(ctx, providerID, schedule); err != nil {
		return domain.WeeklySchedule{}, fmt.Errorf("update schedule: %w", err)
	}
	return schedule, nil
}
