package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fleetboard/tracking-service/internal/api"
	"github.com/fleetboard/tracking-service/internal/infrastructure/config"
	storemongo "github.com/fleetboard/tracking-service/internal/infrastructure/db/mongo"
	storeredis "github.com/fleetboard/tracking-service/internal/infrastructure/db/redis"
	"github.com/fleetboard/tracking-service/internal/live"
	"github.com/fleetboard/tracking-service/pkg/logger"
)

// @title        Fleetboard Tracking Service
// @version      1.0
// @description  Live load tracking: telemetry ingest, point history, SSE updates.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const (
	connectRetries = 10
	connectDelay   = time.Second
	shutdownGrace  = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	mongoClient, db, err := connectMongoWithRetry(ctx, storemongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := storeredis.Connect(ctx, storeredis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	if err := storemongo.NewTrackingRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("tracking index bootstrap failed")
	}
	if err := storemongo.NewLoadRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("load index bootstrap failed")
	}

	hub := live.NewHub(cfg.LiveBuffer, log)
	bridge := live.NewBridge(rdb, hub, log)
	go bridge.Run(ctx)

	e := api.NewRouter(cfg, db, rdb, hub, log)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("tracking service listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// connectMongoWithRetry rides out the window where the store is still coming
// up next to the service, retrying the initial connection a bounded number
// of times.
func connectMongoWithRetry(ctx context.Context, cfg storemongo.Config, log zerolog.Logger) (*mongo.Client, *mongo.Database, error) {
	var lastErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		client, db, err := storemongo.Connect(ctx, cfg)
		if err == nil {
			log.Info().Int("attempt", attempt).Msg("mongo connected")
			return client, db, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Int("retries", connectRetries).Msg("mongo connect failed")
		if attempt < connectRetries {
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(connectDelay):
			}
		}
	}
	return nil, nil, fmt.Errorf("mongo connect failed after %d attempts: %w", connectRetries, lastErr)
}
