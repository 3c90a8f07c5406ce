package notifications

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob removes activity log entries older than the retention window.
// It should be scheduled to run daily.
type CleanupJob struct {
	repo      *Repository
	retention time.Duration
	log       zerolog.Logger
}

// NewCleanupJob creates a new notification cleanup job.
func NewCleanupJob(repo *Repository, retention time.Duration, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:      repo,
		retention: retention,
		log:       log.With().Str("job", "notification_cleanup").Logger(),
	}
}

// Run executes the cleanup job
func (j *CleanupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete old notifications")
		return err
	}

	if deleted > 0 {
		j.log.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("Notification cleanup completed")
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "notification_cleanup"
}
