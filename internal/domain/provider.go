package domain

import (
	"fmt"
	"time"
)

// Provider is a service provider that travels to its customers.
// Home is the depot every daily route starts and ends at.
type Provider struct {
	ProviderID string
	Name       string
	Home       NamedLocation
	Location   *time.Location
	Schedule   WeeklySchedule
}

// Loc returns the provider's time zone, UTC when unset.
func (p *Provider) Loc() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Day returns midnight of the calendar day of t in the provider's time zone.
func (p *Provider) Day(t time.Time) time.Time {
	y, m, d := t.In(p.Loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.Loc())
}

// Availability combines the weekly schedule with bookings and blocked time.
// Cancelled bookings do not occupy their slot.
func (p *Provider) Availability(bookings []Booking, blocks []Block) Availability {
	overrides := make([]Override, 0, len(bookings)+len(blocks))
	for _, b := range bookings {
		if !b.Status.Occupies() {
			continue
		}
		overrides = append(overrides, BusyInterval{Start: b.Start, End: b.End, Reason: "booking " + b.BookingID})
	}
	for _, b := range blocks {
		overrides = append(overrides, BusyInterval{Start: b.Start, End: b.End, Reason: b.Reason})
	}
	return NewAvailability(p.Schedule, overrides...)
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingAccepted, BookingCancelled:
		return true
	}
	return false
}

// Occupies reports whether a booking in this status takes its slot.
func (s BookingStatus) Occupies() bool { return s == BookingPending || s == BookingAccepted }

// Booking is a customer appointment at the customer's location.
type Booking struct {
	BookingID  string
	ProviderID string
	Start      time.Time
	End        time.Time
	Location   NamedLocation
	Status     BookingStatus
}

func (b Booking) Validate() error {
	if b.BookingID == "" {
		return fmt.Errorf("booking: id must not be empty")
	}
	if !b.End.After(b.Start) {
		return fmt.Errorf("booking %s: end must be after start", b.BookingID)
	}
	if !b.Status.Valid() {
		return fmt.Errorf("booking %s: unknown status %q", b.BookingID, b.Status)
	}
	if err := b.Location.Validate(); err != nil {
		return fmt.Errorf("booking %s: %w", b.BookingID, err)
	}
	return nil
}

// Block is time the provider marked as unavailable.
type Block struct {
	BlockID    string
	ProviderID string
	Start      time.Time
	End        time.Time
	Reason     string
}

// RouteStops returns the locations of accepted bookings, in booking order.
// These are the visits a provider has to make on a day.
func RouteStops(bookings []Booking) []BookingLocation {
	stops := make([]BookingLocation, 0, len(bookings))
	for _, b := range bookings {
		if b.Status != BookingAccepted {
			continue
		}
		stops = append(stops, BookingLocation{BookingID: b.BookingID, NamedLocation: b.Location})
	}
	return stops
}
