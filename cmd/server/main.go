// Package main is the entry point for the portfolio tracker API.
// It serves portfolios with auto-laid-out widgets over the sentiment, news, Reddit
// and congressional trades data they display.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/portfolio-tracker/internal/config"
	"github.com/aristath/portfolio-tracker/internal/di"
	"github.com/aristath/portfolio-tracker/internal/server"
	"github.com/aristath/portfolio-tracker/pkg/logger"
)

// main orchestrates startup:
// 1. Loads configuration from the environment (.env when present)
// 2. Initializes logging
// 3. Wires databases, clients, services and jobs via di.Wire
// 4. Starts the scheduler and warms the trades cache
// 5. Starts the HTTP server
// 6. Waits for a shutdown signal and shuts down gracefully
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("store_backend", cfg.StoreBackend).
		Bool("dev_mode", cfg.DevMode).
		Msg("Starting portfolio tracker")

	container, jobs, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close databases")
		}
	}()

	container.Scheduler.Start()

	// The first trades request would otherwise pay for the full dataset download
	go func() {
		if err := container.Scheduler.RunNow(jobs.TradesWarmup); err != nil {
			log.Warn().Err(err).Msg("Initial trades warmup failed")
		}
	}()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	container.Scheduler.Stop()

	log.Info().Msg("Server stopped")
}
