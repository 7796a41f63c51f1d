package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"visit-route-service/internal/domain"
)

// DefaultMaxExactStops is the largest booking count solved by exhaustive search.
// The search visits up to N! leaves; 10 stops keeps a single solve well under a second.
const DefaultMaxExactStops = 10

// DefaultMaxStops caps the stops of one request in every mode.
const DefaultMaxStops = 200

// Mode selects the optimization strategy.
type Mode int

const (
	// ModeExact always runs the exhaustive search and rejects oversized inputs.
	ModeExact Mode = iota
	// ModeHeuristic runs nearest-neighbour construction followed by 2-opt.
	ModeHeuristic
	// ModeAuto is exact up to the stop limit and heuristic beyond it.
	ModeAuto
)

func (m Mode) String() string {
	switch m {
	case ModeExact:
		return "exact"
	case ModeHeuristic:
		return "heuristic"
	case ModeAuto:
		return "auto"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts "exact", "heuristic" or "auto"; empty means exact.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return ModeExact, nil
	case "heuristic":
		return ModeHeuristic, nil
	case "auto":
		return ModeAuto, nil
	}
	return 0, fmt.Errorf("unknown optimize mode %q", s)
}

type optimizeConfig struct {
	mode     Mode
	maxExact int
	maxStops int
}

type OptimizeOption func(*optimizeConfig)

func WithMode(m Mode) OptimizeOption {
	return func(c *optimizeConfig) { c.mode = m }
}

func WithMaxExactStops(n int) OptimizeOption {
	return func(c *optimizeConfig) {
		if n > 0 {
			c.maxExact = n
		}
	}
}

// WithMaxStops sets the hard stop limit that applies in every mode.
func WithMaxStops(n int) OptimizeOption {
	return func(c *optimizeConfig) {
		if n > 0 {
			c.maxStops = n
		}
	}
}

// OptimizeRoute finds the visiting order over matrix indices 1..N that
// minimizes the closed tour cost from and back to the depot at index 0.
//
// In exact mode the search is a depth-first backtracking over unvisited
// indices in ascending order, abandoning a branch as soon as its partial
// cost reaches the best complete tour. Ties keep the first tour found.
// Inputs with more stops than the exact limit are rejected with a
// *domain.OversizedBookingSetError unless a heuristic mode is selected.
// Any mode rejects more than the hard stop limit with a *domain.TooManyStopsError.
func OptimizeRoute(ctx context.Context, m domain.DistanceMatrix, opts ...OptimizeOption) (domain.Route, error) {
	cfg := optimizeConfig{mode: ModeExact, maxExact: DefaultMaxExactStops, maxStops: DefaultMaxStops}
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, err := domain.NewDistanceMatrix(m); err != nil {
		return domain.Route{}, fmt.Errorf("optimize route: %w", err)
	}

	stops := m.Stops()
	if stops == 0 {
		return domain.Route{Order: []int{0, 0}, Cost: 0, Exact: true}, nil
	}
	if stops > cfg.maxStops {
		return domain.Route{}, fmt.Errorf("optimize route: %w", &domain.TooManyStopsError{Stops: stops, Max: cfg.maxStops})
	}

	useExact := true
	switch cfg.mode {
	case ModeExact:
		if stops > cfg.maxExact {
			return domain.Route{}, fmt.Errorf("optimize route: %w", &domain.OversizedBookingSetError{Stops: stops, Max: cfg.maxExact})
		}
	case ModeHeuristic:
		useExact = false
	case ModeAuto:
		useExact = stops <= cfg.maxExact
	default:
		return domain.Route{}, fmt.Errorf("optimize route: unknown mode %d", int(cfg.mode))
	}

	if !useExact {
		route, err := heuristicRoute(ctx, m)
		if err != nil {
			return domain.Route{}, fmt.Errorf("optimize route: %w", err)
		}
		return route, nil
	}

	s := newTourSearch(ctx, m)
	s.dfs(0, 1, 0)
	if s.err != nil {
		return domain.Route{}, fmt.Errorf("optimize route: %w", s.err)
	}

	return domain.Route{Order: s.best, Cost: s.bestCost, Exact: true}, nil
}

// tourSearch is the state of one exhaustive search. Each OptimizeRoute call
// owns its own instance.
type tourSearch struct {
	ctx context.Context
	m   domain.DistanceMatrix
	n   int

	visited []bool
	path    []int

	best     []int
	bestCost float64

	steps int
	err   error
}

func newTourSearch(ctx context.Context, m domain.DistanceMatrix) *tourSearch {
	n := len(m)
	s := &tourSearch{
		ctx:      ctx,
		m:        m,
		n:        n,
		visited:  make([]bool, n),
		path:     make([]int, n+1),
		best:     make([]int, n+1),
		bestCost: math.Inf(1),
	}
	s.visited[0] = true
	return s
}

// dfs extends the partial tour path[0:depth] that currently ends at last.
func (s *tourSearch) dfs(last, depth int, cost float64) {
	if s.err != nil {
		return
	}

	// Sparse cancellation check.
	s.steps++
	if s.steps&4095 == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return
		}
	}

	// Edge costs are non-negative, so this branch cannot improve on the best.
	if cost >= s.bestCost {
		return
	}

	if depth == s.n {
		total := cost + s.m[last][0]
		if total < s.bestCost {
			s.bestCost = total
			s.path[s.n] = 0
			copy(s.best, s.path)
		}
		return
	}

	for v := 1; v < s.n; v++ {
		if s.visited[v] {
			continue
		}
		s.visited[v] = true
		s.path[depth] = v
		s.dfs(v, depth+1, cost+s.m[last][v])
		s.visited[v] = false
	}
}

// heuristicRoute builds a tour by nearest neighbour and improves it with 2-opt.
func heuristicRoute(ctx context.Context, m domain.DistanceMatrix) (domain.Route, error) {
	if err := ctx.Err(); err != nil {
		return domain.Route{}, err
	}
	order, err := twoOpt(ctx, m, nearestNeighborOrder(m))
	if err != nil {
		return domain.Route{}, err
	}
	return domain.Route{Order: order, Cost: m.TourCost(order), Exact: false}, nil
}

// nearestNeighborOrder repeatedly moves to the closest unvisited index.
// Ties go to the lower index so the result is deterministic.
func nearestNeighborOrder(m domain.DistanceMatrix) []int {
	n := len(m)
	visited := make([]bool, n)
	visited[0] = true

	order := make([]int, 0, n+1)
	order = append(order, 0)

	current := 0
	for len(order) < n {
		best := -1
		bestDist := math.Inf(1)
		for v := 1; v < n; v++ {
			if visited[v] {
				continue
			}
			if d := m[current][v]; d < bestDist {
				bestDist = d
				best = v
			}
		}
		visited[best] = true
		order = append(order, best)
		current = best
	}

	return append(order, 0)
}

// twoOpt reverses segments of the tour while that shortens it. The depot
// endpoints never move. Symmetric matrices use the constant-time edge
// exchange delta; asymmetric ones recompute the tour, since reversing a
// segment flips the direction of its inner edges. ctx is checked once per
// segment start.
func twoOpt(ctx context.Context, m domain.DistanceMatrix, order []int) ([]int, error) {
	const eps = 1e-9

	best := slices.Clone(order)
	bestCost := m.TourCost(best)
	last := len(best) - 2
	symmetric := isSymmetric(m)

	for improved := true; improved; {
		improved = false
		for i := 1; i < last; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for k := i + 1; k <= last; k++ {
				if symmetric {
					a, b, c, d := best[i-1], best[i], best[k], best[k+1]
					if m[a][c]+m[b][d] < m[a][b]+m[c][d]-eps {
						slices.Reverse(best[i : k+1])
						improved = true
					}
					continue
				}

				candidate := slices.Clone(best)
				slices.Reverse(candidate[i : k+1])
				if c := m.TourCost(candidate); c < bestCost-eps {
					best, bestCost = candidate, c
					improved = true
				}
			}
		}
	}

	return best, nil
}

func isSymmetric(m domain.DistanceMatrix) bool {
	for i := range m {
		for j := i + 1; j < len(m); j++ {
			if m[i][j] != m[j][i] {
				return false
			}
		}
	}
	return true
}
