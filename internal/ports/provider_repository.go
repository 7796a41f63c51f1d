package ports

import (
	"context"
	"time"
	"visit-route-service/internal/domain"
)

// Port: a boundary for reading providers and their calendar from a data source.
type ProviderRepository interface {
	// Retrieve one provider with its weekly schedule. Returns domain.ErrNotFound when missing.
	GetProvider(ctx context.Context, providerID string) (*domain.Provider, error)
	// List every provider id, ordered.
	ListProviderIDs(ctx context.Context) ([]string, error)
	// Replace the provider's weekly schedule.
	SaveSchedule(ctx context.Context, providerID string, schedule domain.WeeklySchedule) error
	// Bookings overlapping [from, to), ordered by start.
	ListBookings(ctx context.Context, providerID string, from, to time.Time) ([]domain.Booking, error)
	// Blocked intervals overlapping [from, to), ordered by start.
	ListBlocks(ctx context.Context, providerID string, from, to time.Time) ([]domain.Block, error)
}
