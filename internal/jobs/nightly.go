package jobs

import (
	"context"
	"fmt"
	"time"

	"visit-route-service/internal/platform/obs"
	"visit-route-service/internal/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DayPlanner is the part of services.Planner the nightly job needs.
type DayPlanner interface {
	PlanDay(ctx context.Context, date time.Time) ([]services.DayPlan, error)
}

// NightlyPlanner precomputes tomorrow's visit plans so the route cache is
// warm before providers start their day.
type NightlyPlanner struct {
	planner DayPlanner
	loc     *time.Location
	timeout time.Duration
	now     func() time.Time
	cron    *cron.Cron
}

func NewNightlyPlanner(planner DayPlanner, loc *time.Location) *NightlyPlanner {
	if loc == nil {
		loc = time.UTC
	}
	return &NightlyPlanner{
		planner: planner,
		loc:     loc,
		timeout: 30 * time.Minute,
		now:     time.Now,
	}
}

// Start schedules the job with a standard five-field cron spec.
func (n *NightlyPlanner) Start(spec string) error {
	c := cron.New(cron.WithLocation(n.loc))
	if _, err := c.AddFunc(spec, func() { _ = n.Run(context.Background()) }); err != nil {
		return fmt.Errorf("nightly planner: schedule %q: %w", spec, err)
	}
	n.cron = c
	c.Start()
	obs.L().Info("nightly planner scheduled", zap.String("spec", spec), zap.String("tz", n.loc.String()))
	return nil
}

// Stop halts scheduling and waits for a running job to finish or ctx to end.
func (n *NightlyPlanner) Stop(ctx context.Context) {
	if n.cron == nil {
		return
	}
	select {
	case <-n.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Run plans the next calendar day for every provider.
func (n *NightlyPlanner) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	day := n.now().In(n.loc).AddDate(0, 0, 1)
	results, err := n.planner.PlanDay(ctx, day)
	if err != nil {
		obs.L().Error("nightly planning failed", zap.Error(err))
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			obs.L().Warn("provider plan failed", zap.String("provider_id", r.ProviderID), zap.Error(r.Err))
		}
	}
	obs.L().Info("nightly planning done",
		zap.String("date", day.Format(time.DateOnly)),
		zap.Int("providers", len(results)),
		zap.Int("failed", failed),
	)
	return nil
}
