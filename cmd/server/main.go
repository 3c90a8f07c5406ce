// Package main is the entry point for the traffic light control panel.
// It serves the panel view and API, keeps the controller connectivity state
// and runs the housekeeping jobs.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/trafficpanel/internal/config"
	"github.com/aristath/trafficpanel/internal/di"
	"github.com/aristath/trafficpanel/internal/server"
	"github.com/aristath/trafficpanel/pkg/logger"
)

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

	log.Info().
		Str("controller", cfg.Controller.BaseURL()).
		Str("data_dir", cfg.DataDir).
		Msg("Starting traffic light control panel")

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		Config:    cfg,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	container.Scheduler.Start()

	// Initial sync, as the view does on load. The retry poll takes over if
	// the controller is not reachable yet.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Controller.Timeout)
		defer cancel()
		if _, err := container.PanelService.Sync(ctx); err != nil {
			log.Warn().Err(err).Msg("Initial sync failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
