package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MaintenanceJob checkpoints the WAL and verifies integrity.
// It should be scheduled to run daily.
type MaintenanceJob struct {
	db  *DB
	log zerolog.Logger
}

// NewMaintenanceJob creates a maintenance job for db
func NewMaintenanceJob(db *DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:  db,
		log: log.With().Str("job", "database_maintenance").Str("database", db.Name()).Logger(),
	}
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Msg("Database health check failed")
		return err
	}

	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		j.log.Error().Err(err).Msg("WAL checkpoint failed")
		return err
	}

	j.log.Debug().Msg("Database maintenance completed")
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *MaintenanceJob) Name() string {
	return "database_maintenance"
}
