package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/enochaseks/lokal-sub003/internal/ingest"
	"github.com/enochaseks/lokal-sub003/internal/records"
	"github.com/enochaseks/lokal-sub003/pkg/config"
	"github.com/enochaseks/lokal-sub003/pkg/db"
	"github.com/enochaseks/lokal-sub003/pkg/idempotency"
	"github.com/enochaseks/lokal-sub003/pkg/logger"
	"github.com/enochaseks/lokal-sub003/pkg/metrics"
	"github.com/enochaseks/lokal-sub003/pkg/migrate"
	"github.com/enochaseks/lokal-sub003/pkg/pubsub"
	"github.com/enochaseks/lokal-sub003/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "ingest-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "ingest-worker"

	logg = logger.New(logger.Options{
		ServiceName: "ingest-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "failed to close database client", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		requireResource(ctx, logg, "dev migrations", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.SalesSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "sales subscription", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Ingest.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	registry := prometheus.NewRegistry()
	ingestMetrics := metrics.NewIngestMetrics(registry)

	writer, err := ingest.NewWriter(records.NewRepository(dbClient.DB()), ingest.WriterConfig{
		BatchSize: cfg.Ingest.BatchSize,
		RetryPolicy: ingest.RetryPolicy{
			MaxAttempts:    cfg.Ingest.MaxAttempts,
			InitialBackoff: cfg.Ingest.InitialBackoff,
			MaximumBackoff: cfg.Ingest.MaximumBackoff,
		},
	}, ingestMetrics)
	requireResource(ctx, logg, "record writer", err)

	service, err := ingest.NewService(subscription, writer, manager, logg, ingestMetrics)
	requireResource(ctx, logg, "ingest worker service", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(runCtx, "ingest worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "ingest worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
