package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"visit-route-service/internal/adapters/cache"
	"visit-route-service/internal/adapters/distance"
	"visit-route-service/internal/adapters/repositories"
	"visit-route-service/internal/api"
	"visit-route-service/internal/config"
	"visit-route-service/internal/jobs"
	"visit-route-service/internal/platform/db"
	"visit-route-service/internal/platform/obs"
	"visit-route-service/internal/ports"
	"visit-route-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, distance sources) behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := obs.Init(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer conn.Close()
	dialect := db.DialectFor(cfg.DBDriver)

	repo := repositories.NewSQLRepository(conn, dialect)

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(conn, repo, cfg.SeedPath); err != nil {
		return err
	}

	matrix, err := newMatrixProvider(cfg, conn, dialect)
	if err != nil {
		return err
	}

	plannerOpts := []services.PlannerOption{
		services.WithMatrixSource(cfg.DistanceProvider),
		services.WithPlannerMaxExactStops(cfg.MaxExactStops),
		services.WithPlannerMaxStops(cfg.MaxRouteStops),
		services.WithWorkers(cfg.PlannerWorkers),
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			obs.L().Warn("redis unavailable, route cache disabled", zap.Error(err))
		} else {
			plannerOpts = append(plannerOpts, services.WithRouteCache(cache.NewRedisRouteCache(rdb), cfg.RouteCacheTTL))
		}
	}

	availability := services.NewAvailabilityService(repo, cfg.SlotLookAheadDays)
	planner := services.NewPlanner(repo, matrix, plannerOpts...)

	nightly := jobs.NewNightlyPlanner(planner, time.UTC)
	if cfg.NightlyPlanCron != "" {
		if err := nightly.Start(cfg.NightlyPlanCron); err != nil {
			return err
		}
	}

	router := api.NewRouter(availability, planner, api.RouterConfig{OptimizeRatePerMin: cfg.OptimizeRatePerMin})

	// Timeouts are tuned for cold-cache route planning (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		obs.L().Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		obs.L().Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	nightly.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func newMatrixProvider(cfg *config.Config, conn *sql.DB, dialect db.Dialect) (ports.MatrixProvider, error) {
	// Road-distance providers use the persistent distance cache to avoid repeated matrix calls.
	distanceCache := cache.NewSQLDistanceCache(conn, dialect)

	switch cfg.DistanceProvider {
	case "ors":
		ors, err := distance.NewORSMatrixProvider(cfg.ORSAPIKey)
		if err != nil {
			return nil, err
		}
		return distance.NewCachedMatrixProvider(ors, distanceCache), nil
	case "google":
		g, err := distance.NewGoogleMatrixProvider(cfg.GoogleAPIKey)
		if err != nil {
			return nil, err
		}
		return distance.NewCachedMatrixProvider(g, distanceCache), nil
	}
	return distance.NewHaversineProvider(), nil
}

func initAndSeed(conn *sql.DB, repo *repositories.SQLRepository, seedPath string) error {
	ctx := context.Background()
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if seedPath == "" {
		return nil
	}
	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		obs.L().Info("no seed file, skipping", zap.String("path", seedPath))
		return nil
	}

	if err := repositories.SeedFromJSON(ctx, repo, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
