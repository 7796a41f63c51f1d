package domain

import "time"

// SlotLength is the fixed duration of a bookable slot.
const SlotLength = time.Hour

// Override is an exception layered on top of the regular weekly hours.
// Claims reports whether the override takes the slot-length period starting at t.
type Override interface {
	Claims(t time.Time) bool
}

// BusyInterval is an existing booking or a blocked period.
type BusyInterval struct {
	Start  time.Time
	End    time.Time
	Reason string
}

// Claims reports whether the interval overlaps [t, t+SlotLength).
func (b BusyInterval) Claims(t time.Time) bool {
	return b.Start.Before(t.Add(SlotLength)) && b.End.After(t)
}

// Availability answers whether a provider can take a slot at a given time.
// Regular-hours membership is necessary but not sufficient: any override
// claiming the hour makes it unavailable.
type Availability struct {
	Schedule  WeeklySchedule
	Overrides []Override
}

func NewAvailability(schedule WeeklySchedule, overrides ...Override) Availability {
	return Availability{Schedule: schedule, Overrides: overrides}
}

// InRegularHours reports whether a full slot starting at t fits in one of
// the windows for t's weekday.
func (a Availability) InRegularHours(t time.Time) bool {
	from := Clock(t.Hour(), t.Minute())
	if t.Second() != 0 || t.Nanosecond() != 0 {
		return false
	}
	to := from + TimeOfDay(SlotLength/time.Minute)

	for _, w := range a.Schedule.days[WeekdayOf(t.Weekday())] {
		if w.Contains(from, to) {
			return true
		}
	}
	return false
}

func (a Availability) IsAvailable(t time.Time) bool {
	if !a.InRegularHours(t) {
		return false
	}
	for _, o := range a.Overrides {
		if o.Claims(t) {
			return false
		}
	}
	return true
}
