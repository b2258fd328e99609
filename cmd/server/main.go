package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/cache"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/config"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/infra"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/router"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if cfg.AutoMigrate {
		if err := infra.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional: without it jobs run inline and the cache is in-process.
	var rdb *redis.Client
	var store cache.Store
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(ctx, cfg.RedisURL, cfg.WorkerPoolSize)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		store = cache.NewRedis(rdb, "bmt:")
	} else {
		log.Warn().Msg("REDIS_URL not set, using in-memory cache and inline jobs")
		mem := cache.NewMemory()
		mem.StartJanitor(ctx, time.Minute)
		store = mem
	}

	app := router.Wire(cfg, db, rdb, store)

	if rdb != nil {
		worker.StartWorkerPool(ctx, rdb, app.WorkerHandlers(rdb), cfg.WorkerPoolSize)
	}
	worker.StartScheduler(ctx, app.Tasks(cfg)...)

	r := router.New(cfg, db, rdb, app)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("bmt api listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
