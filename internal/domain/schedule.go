package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Weekday is a closed enumeration of the seven days, Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// AllWeekdays lists the days in schedule order.
var AllWeekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// WeekdayOf maps a time.Weekday (Sunday = 0) to the Monday-first enumeration.
func WeekdayOf(d time.Weekday) Weekday {
	return Weekday((int(d) + 6) % 7)
}

// ParseWeekday accepts the lower-case English day name.
func ParseWeekday(s string) (Weekday, error) {
	for i, n := range weekdayNames {
		if n == s {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// TimeOfDay counts minutes since local midnight. 1440 denotes end of day.
type TimeOfDay int

const MinutesPerDay = 24 * 60

const EndOfDay TimeOfDay = MinutesPerDay

func Clock(hour, minute int) TimeOfDay { return TimeOfDay(hour*60 + minute) }

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()) }

// ParseTimeOfDay parses "HH:MM" in 24h notation; "24:00" is accepted.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("parse time of day %q: out of range", s)
	}
	return Clock(h, m), nil
}

// On anchors the time of day to the calendar day of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, date.Location())
}

// TimeRange is a single availability window within one day.
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// NewTimeRange validates start < end and that both fall inside one day.
func NewTimeRange(start, end TimeOfDay) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

func (r TimeRange) Validate() error {
	if r.Start < 0 || r.End > EndOfDay {
		return fmt.Errorf("%w: %s-%s outside of a single day", ErrInvalidScheduleWindow, r.Start, r.End)
	}
	if r.Start >= r.End {
		return fmt.Errorf("%w: start %s not before end %s", ErrInvalidScheduleWindow, r.Start, r.End)
	}
	return nil
}

// Contains reports whether [from, to) lies within the window.
func (r TimeRange) Contains(from, to TimeOfDay) bool {
	return from >= r.Start && to <= r.End
}

func (r TimeRange) String() string { return r.Start.String() + "-" + r.End.String() }

// WeeklySchedule maps each weekday to its ordered, non-overlapping windows.
// The zero value is a schedule with no availability.
type WeeklySchedule struct {
	days [7][]TimeRange
}

// NewWeeklySchedule validates and normalizes the windows of every listed day.
func NewWeeklySchedule(days map[Weekday][]TimeRange) (WeeklySchedule, error) {
	var s WeeklySchedule
	for d, ranges := range days {
		if err := s.SetDay(d, ranges); err != nil {
			return WeeklySchedule{}, err
		}
	}
	return s, nil
}

// SetDay replaces the windows for one day. The ranges are sorted by start;
// any invalid or overlapping window rejects the whole update.
func (s *WeeklySchedule) SetDay(day Weekday, ranges []TimeRange) error {
	if !day.Valid() {
		return fmt.Errorf("set schedule day: %w: %s", ErrInvalidScheduleWindow, day)
	}

	sorted := slices.Clone(ranges)
	for _, r := range sorted {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("set schedule %s: %w", day, err)
		}
	}
	slices.SortFunc(sorted, func(a, b TimeRange) int { return int(a.Start - b.Start) })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End {
			return fmt.Errorf(
				"set schedule %s: %w: %s overlaps %s",
				day, ErrInvalidScheduleWindow, sorted[i-1], sorted[i],
			)
		}
	}

	if len(sorted) == 0 {
		sorted = nil
	}
	s.days[day] = sorted
	return nil
}

// Windows returns a copy of the ordered windows for day; nil when unavailable.
func (s WeeklySchedule) Windows(day Weekday) []TimeRange {
	if !day.Valid() {
		return nil
	}
	return slices.Clone(s.days[day])
}

// IsEmpty reports whether no day has any window.
func (s WeeklySchedule) IsEmpty() bool {
	for _, d := range s.days {
		if len(d) > 0 {
			return false
		}
	}
	return true
}

// Days returns the schedule as a map with an entry for each day that has windows.
func (s WeeklySchedule) Days() map[Weekday][]TimeRange {
	out := make(map[Weekday][]TimeRange)
	for _, d := range AllWeekdays {
		if len(s.days[d]) > 0 {
			out[d] = slices.Clone(s.days[d])
		}
	}
	return out
}

// WindowSpec is the textual form of a window, e.g. {"08:00", "12:00"}.
type WindowSpec struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ParseWeeklySchedule builds a schedule from day names to textual windows.
func ParseWeeklySchedule(spec map[string][]WindowSpec) (WeeklySchedule, error) {
	days := make(map[Weekday][]TimeRange, len(spec))
	for name, windows := range spec {
		day, err := ParseWeekday(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return WeeklySchedule{}, fmt.Errorf("parse schedule: %w", err)
		}
		for _, w := range windows {
			start, err := ParseTimeOfDay(w.Start)
			if err != nil {
				return WeeklySchedule{}, fmt.Errorf("parse schedule %s: %w", day, err)
			}
			end, err := ParseTimeOfDay(w.End)
			if err != nil {
				return WeeklySchedule{}, fmt.Errorf("parse schedule %s: %w", day, err)
			}
			days[day] = append(days[day], TimeRange{Start: start, End: end})
		}
	}
	return NewWeeklySchedule(days)
}

// Spec renders the schedule back into its textual form.
func (s WeeklySchedule) Spec() map[string][]WindowSpec {
	out := make(map[string][]WindowSpec)
	for _, d := range AllWeekdays {
		for _, w := range s.days[d] {
			out[d.String()] = append(out[d.String()], WindowSpec{Start: w.Start.String(), End: w.End.String()})
		}
	}
	return out
}
