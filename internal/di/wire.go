// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"

	"github.com/aristath/trafficpanel/internal/config"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order of operations:
// 1. Initialize the database
// 2. Initialize services
// 3. Register jobs
// The scheduler is not started; the caller does that once the server is up.
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := InitializeServices(container, cfg, log); err != nil {
		container.PanelDB.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := RegisterJobs(container, cfg, log); err != nil {
		container.PanelDB.Close()
		return nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, nil
}
