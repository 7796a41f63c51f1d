package services

import (
	"time"

	"visit-route-service/internal/domain"
)

// DefaultLookAheadDays bounds the day search of NextNSlots.
const DefaultLookAheadDays = 365

// AvailableSlotsOnDate lists the one-hour slots on date's calendar day.
//
// Each window of the day's regular hours is walked from its start in
// slot-length steps; a slot is emitted when it ends within the window and
// the availability (regular hours plus overrides) admits its start. Starts
// that do not exist on date's wall clock are skipped.
func AvailableSlotsOnDate(av domain.Availability, date time.Time) []domain.Slot {
	step := domain.TimeOfDay(domain.SlotLength / time.Minute)
	windows := av.Schedule.Windows(domain.WeekdayOf(date.Weekday()))

	slots := make([]domain.Slot, 0)
	for _, w := range windows {
		for start := w.Start; start+step <= w.End; start += step {
			at := start.On(date)
			// Skip wall-clock times a DST gap removes from the day.
			if at.Hour() != start.Hour() || at.Minute() != start.Minute() {
				continue
			}
			if !av.IsAvailable(at) {
				continue
			}
			slots = append(slots, domain.NewSlot(date, start))
		}
	}

	return slots
}

type slotSearch struct {
	lookAheadDays int
	notBefore     time.Time
}

type SlotOption func(*slotSearch)

// WithLookAheadDays sets how many calendar days NextNSlots may inspect.
func WithLookAheadDays(days int) SlotOption {
	return func(s *slotSearch) {
		if days > 0 {
			s.lookAheadDays = days
		}
	}
}

// WithNotBefore drops slots that start before t.
func WithNotBefore(t time.Time) SlotOption {
	return func(s *slotSearch) { s.notBefore = t }
}

// NextNSlots collects the first n available slots starting on startDate's
// calendar day, advancing one day at a time.
//
// The search stops after the look-ahead; in that case the slots found so far
// are returned together with a *domain.NoAvailabilityError.
func NextNSlots(
	av domain.Availability,
	startDate time.Time,
	n int,
	opts ...SlotOption,
) ([]domain.Slot, error) {
	search := slotSearch{lookAheadDays: DefaultLookAheadDays}
	for _, opt := range opts {
		opt(&search)
	}

	if n <= 0 {
		return []domain.Slot{}, nil
	}

	y, m, d := startDate.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, startDate.Location())

	out := make([]domain.Slot, 0, n)
	for i := 0; i < search.lookAheadDays; i++ {
		for _, s := range AvailableSlotsOnDate(av, day) {
			if !search.notBefore.IsZero() && s.StartTime().Before(search.notBefore) {
				continue
			}
			out = append(out, s)
			if len(out) == n {
				return out, nil
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	return out, &domain.NoAvailabilityError{
		Wanted:        n,
		Found:         len(out),
		LookAheadDays: search.lookAheadDays,
	}
}
