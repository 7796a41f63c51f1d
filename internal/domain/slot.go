package domain

import (
	"fmt"
	"time"
)

// Slot is a concrete one-hour bookable interval on a specific day.
type Slot struct {
	Date        time.Time `json:"date"`
	StartHour   int       `json:"start_hour"`
	StartMinute int       `json:"start_minute"`
	EndHour     int       `json:"end_hour"`
	EndMinute   int       `json:"end_minute"`
}

// NewSlot builds the slot that starts at start on the day of date.
func NewSlot(date time.Time, start TimeOfDay) Slot {
	end := start + TimeOfDay(SlotLength/time.Minute)
	y, m, d := date.Date()
	return Slot{
		Date:        time.Date(y, m, d, 0, 0, 0, 0, date.Location()),
		StartHour:   start.Hour(),
		StartMinute: start.Minute(),
		EndHour:     end.Hour(),
		EndMinute:   end.Minute(),
	}
}

func (s Slot) StartOfDay() TimeOfDay { return Clock(s.StartHour, s.StartMinute) }
func (s Slot) EndOfDay() TimeOfDay   { return Clock(s.EndHour, s.EndMinute) }

// StartTime is the absolute start instant of the slot.
func (s Slot) StartTime() time.Time { return s.StartOfDay().On(s.Date) }

// EndTime is the absolute end instant of the slot.
func (s Slot) EndTime() time.Time { return s.StartTime().Add(SlotLength) }

func (s Slot) String() string {
	return fmt.Sprintf("%s %02d:%02d-%02d:%02d",
		s.Date.Format(time.DateOnly), s.StartHour, s.StartMinute, s.EndHour, s.EndMinute)
}
