package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinate     = errors.New("invalid coordinate")
	ErrInvalidScheduleWindow = errors.New("invalid schedule window")
	ErrNoAvailability        = errors.New("no availability within look-ahead")
	ErrOversizedBookingSet   = errors.New("booking set too large for exact search")
	ErrTooManyStops          = errors.New("too many stops")
	ErrInvalidMatrix         = errors.New("invalid distance matrix")
	ErrNotFound              = errors.New("not found")
)

// NoAvailabilityError is returned when the day search for the next slots
// runs out of look-ahead before enough slots were collected.
type NoAvailabilityError struct {
	Wanted        int
	Found         int
	LookAheadDays int
}

func (e *NoAvailabilityError) Error() string {
	return fmt.Sprintf("found %d of %d slots in %d days: %v", e.Found, e.Wanted, e.LookAheadDays, ErrNoAvailability)
}

func (e *NoAvailabilityError) Unwrap() error { return ErrNoAvailability }

// OversizedBookingSetError is returned by the exact optimizer when the number
// of stops exceeds the configured bound.
type OversizedBookingSetError struct {
	Stops int
	Max   int
}

func (e *OversizedBookingSetError) Error() string {
	return fmt.Sprintf("%d stops exceeds exact limit %d: %v", e.Stops, e.Max, ErrOversizedBookingSet)
}

func (e *OversizedBookingSetError) Unwrap() error { return ErrOversizedBookingSet }

// TooManyStopsError is returned when a route request exceeds the hard stop
// limit that applies in every optimize mode.
type TooManyStopsError struct {
	Stops int
	Max   int
}

func (e *TooManyStopsError) Error() string {
	return fmt.Sprintf("%d stops exceeds limit %d: %v", e.Stops, e.Max, ErrTooManyStops)
}

func (e *TooManyStopsError) Unwrap() error { return ErrTooManyStops }
