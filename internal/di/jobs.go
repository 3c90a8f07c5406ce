package di

import (
	"fmt"

	"github.com/aristath/trafficpanel/internal/config"
	"github.com/aristath/trafficpanel/internal/database"
	"github.com/aristath/trafficpanel/internal/modules/notifications"
	"github.com/rs/zerolog"
)

const (
	notificationCleanupSchedule = "0 30 3 * * *"
	databaseMaintenanceSchedule = "0 0 * * * *"
)

// RegisterJobs registers the housekeeping jobs with the scheduler
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}
	if container.Scheduler == nil {
		return fmt.Errorf("scheduler not initialized")
	}

	cleanup := notifications.NewCleanupJob(container.NotificationRepo, cfg.Notifications.Retention, log)
	if _, err := container.Scheduler.AddJob(notificationCleanupSchedule, cleanup); err != nil {
		return fmt.Errorf("failed to register notification cleanup job: %w", err)
	}

	maintenance := database.NewMaintenanceJob(container.PanelDB, log)
	if _, err := container.Scheduler.AddJob(databaseMaintenanceSchedule, maintenance); err != nil {
		return fmt.Errorf("failed to register database maintenance job: %w", err)
	}

	log.Info().Int("jobs", container.Scheduler.Entries()).Msg("Jobs registered")

	return nil
}
