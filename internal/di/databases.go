package di

import (
	"fmt"
	"path/filepath"

	"github.com/aristath/trafficpanel/internal/config"
	"github.com/aristath/trafficpanel/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens panel.db under the data directory and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{Config: cfg}

	panelDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "panel.db"),
		Name: "panel",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize panel database: %w", err)
	}

	if err := panelDB.Migrate(); err != nil {
		panelDB.Close()
		return nil, fmt.Errorf("failed to migrate panel database: %w", err)
	}
	container.PanelDB = panelDB

	log.Info().Str("path", panelDB.Path()).Msg("Panel database initialized")

	return container, nil
}
