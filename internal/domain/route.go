package domain

import (
	"fmt"
	"math"
	"time"
)

// DistanceMatrix holds travel distances between a depot (index 0) and
// N booking locations (indices 1..N).
type DistanceMatrix [][]float64

// NewDistanceMatrix validates that rows form a square matrix of finite,
// non-negative distances with a zero diagonal.
func NewDistanceMatrix(rows [][]float64) (DistanceMatrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: matrix must include the depot", ErrInvalidMatrix)
	}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidMatrix, i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, fmt.Errorf("%w: entry [%d][%d] = %v", ErrInvalidMatrix, i, j, v)
			}
		}
		if row[i] != 0 {
			return nil, fmt.Errorf("%w: diagonal entry [%d][%d] = %v", ErrInvalidMatrix, i, i, row[i])
		}
	}
	return DistanceMatrix(rows), nil
}

// Stops is the number of non-depot locations.
func (m DistanceMatrix) Stops() int {
	if len(m) == 0 {
		return 0
	}
	return len(m) - 1
}

// TourCost sums consecutive edges of order.
func (m DistanceMatrix) TourCost(order []int) float64 {
	var cost float64
	for i := 1; i < len(order); i++ {
		cost += m[order[i-1]][order[i]]
	}
	return cost
}

// Route is a closed tour over matrix indices: 0, perm(1..N), 0.
// Exact is false when the order came from the heuristic fallback.
type Route struct {
	Order []int   `json:"order"`
	Cost  float64 `json:"cost"`
	Exact bool    `json:"exact"`
}

// Visits returns the non-depot indices in visiting order.
func (r Route) Visits() []int {
	if len(r.Order) < 2 {
		return nil
	}
	return r.Order[1 : len(r.Order)-1]
}

// BookingLocation is a place the provider has to visit for one booking.
type BookingLocation struct {
	BookingID string `json:"booking_id"`
	NamedLocation
}

// Represents a single stop in a visit plan.
// Leg distances are measured from the previous stop.
type VisitStop struct {
	BookingID    string        `json:"booking_id"`
	Location     NamedLocation `json:"location"`
	LegKm        float64       `json:"leg_km"`
	CumulativeKm float64       `json:"cumulative_km"`
}

// Represents the planned visiting order for one provider on one day.
// A VisitPlan is the output of route optimization: the depot, the ordered
// stops and the closing leg back to the depot. It is immutable planning data.
type VisitPlan struct {
	ProviderID string        `json:"provider_id"`
	Date       time.Time     `json:"date"`
	Depot      NamedLocation `json:"depot"`
	Stops      []VisitStop   `json:"stops"`
	ReturnKm   float64       `json:"return_km"`
	TotalKm    float64       `json:"total_km"`
	Exact      bool          `json:"exact"`
}

// NewVisitPlan lays out route over depot and stops, where stops[i-1]
// corresponds to matrix index i.
func NewVisitPlan(
	providerID string,
	date time.Time,
	depot NamedLocation,
	stops []BookingLocation,
	m DistanceMatrix,
	route Route,
) (*VisitPlan, error) {
	if len(route.Order) != len(stops)+2 {
		return nil, fmt.Errorf("visit plan: route has %d entries for %d stops", len(route.Order), len(stops))
	}

	plan := &VisitPlan{
		ProviderID: providerID,
		Date:       date,
		Depot:      depot,
		Stops:      make([]VisitStop, 0, len(stops)),
		Exact:      route.Exact,
	}

	prev := 0
	var total float64
	for _, idx := range route.Visits() {
		if idx < 1 || idx > len(stops) {
			return nil, fmt.Errorf("visit plan: route index %d out of range", idx)
		}
		leg := m[prev][idx]
		total += leg
		s := stops[idx-1]
		plan.Stops = append(plan.Stops, VisitStop{
			BookingID:    s.BookingID,
			Location:     s.NamedLocation,
			LegKm:        leg,
			CumulativeKm: total,
		})
		prev = idx
	}
	plan.ReturnKm = m[prev][0]
	plan.TotalKm = total + plan.ReturnKm

	return plan, nil
}

// Sequence lists the locations in visiting order, depot first and last.
func (p *VisitPlan) Sequence() []NamedLocation {
	out := make([]NamedLocation, 0, len(p.Stops)+2)
	out = append(out, p.Depot)
	for _, s := range p.Stops {
		out = append(out, s.Location)
	}
	return append(out, p.Depot)
}
