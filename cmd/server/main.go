package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nhl_pool/sync/internal/auth"
	"nhl_pool/sync/internal/cache"
	"nhl_pool/sync/internal/config"
	"nhl_pool/sync/internal/predictions"
	"nhl_pool/sync/internal/provider"
	"nhl_pool/sync/internal/scheduler"
	"nhl_pool/sync/internal/server"
	"nhl_pool/sync/internal/standings"
	"nhl_pool/sync/internal/storage"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting NHL pool standings sync service")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Storage: a connection failure must not crash startup. Open hands
	// back a rejecting stub so every request reports the condition.
	store, err := storage.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("Database unavailable - serving with rejecting storage stub")
	} else {
		defer store.Close()
		if err := storage.Migrate(ctx, store); err != nil {
			log.Error().Err(err).Msg("Schema migration failed")
		}
	}

	redisCache, err := cache.NewRedisCache(cache.Config{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
		log.Info().Msg("Redis cache connected")
	}

	fetcher := provider.NewFetcher(provider.Config{
		NHLWebAPIURL: cfg.NHLWebAPIURL,
		StatsAPIURL:  cfg.StatsAPIURL,
		Timeout:      cfg.ProviderTimeout,
	})

	standingsRepo := standings.NewRepository(store, redisCache)
	syncService := standings.NewService(standingsRepo, fetcher)
	predictionsRepo := predictions.NewRepository(store)
	gate := auth.NewGate(cfg.CronSecret, cfg.AdminPassword, cfg.IngestSecret)

	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort)
	}

	var sched *scheduler.Scheduler
	if cfg.EnableScheduler {
		sched = scheduler.NewScheduler(syncService, cfg.SyncCron)
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.New(gate, syncService, standingsRepo, predictionsRepo).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	<-sigChan
	log.Info().Msg("Received shutdown signal, gracefully shutting down...")
	cancel()

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
