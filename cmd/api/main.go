package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/enochaseks/lokal-sub003/api/routes"
	"github.com/enochaseks/lokal-sub003/internal/analytics"
	"github.com/enochaseks/lokal-sub003/internal/records"
	"github.com/enochaseks/lokal-sub003/pkg/config"
	"github.com/enochaseks/lokal-sub003/pkg/db"
	"github.com/enochaseks/lokal-sub003/pkg/enums"
	"github.com/enochaseks/lokal-sub003/pkg/logger"
	"github.com/enochaseks/lokal-sub003/pkg/metrics"
	"github.com/enochaseks/lokal-sub003/pkg/migrate"
	"github.com/enochaseks/lokal-sub003/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	snapshotCache, err := analytics.NewSnapshotCache(redisClient, cfg.Snapshot.CacheTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot cache", err)
		os.Exit(1)
	}

	currency, err := enums.ParseCurrency(cfg.Snapshot.DefaultCurrency)
	if err != nil {
		logg.Warn(context.Background(), "invalid default currency, falling back to GBP")
		currency = enums.CurrencyGBP
	}

	registry := prometheus.NewRegistry()
	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Source:   records.NewRepository(dbClient.DB()),
		Cache:    snapshotCache,
		Logger:   logg,
		Metrics:  metrics.NewReconcileMetrics(registry),
		Currency: currency,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, registry, analyticsService, dbClient, redisClient),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
