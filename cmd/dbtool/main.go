package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"visit-route-service/internal/adapters/repositories"
	"visit-route-service/internal/config"
	"visit-route-service/internal/platform/db"
	"visit-route-service/internal/platform/obs"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := obs.Init(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	conn, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	ctx := context.Background()
	repo := repositories.NewSQLRepository(conn, db.DialectFor(cfg.DBDriver))

	seedPath := config.Get("SEED_PATH", cfg.SeedPath)

	logger.Info("initializing database schema", zap.String("driver", cfg.DBDriver))
	if err := repositories.InitSchema(ctx, conn); err != nil {
		logger.Fatal("schema initialization failed", zap.Error(err))
	}
	logger.Info("schema ready")

	logger.Info("seeding database", zap.String("path", seedPath))
	if err := repositories.SeedFromJSON(ctx, repo, seedPath); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seeding complete")
}
