// Package scheduler runs periodic jobs on top of robfig/cron.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// EntryID identifies a registered job so it can be removed later
type EntryID = cron.EntryID

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a new scheduler. Overlapping runs of the same entry are skipped.
func New(log zerolog.Logger) *Scheduler {
	l := log.With().Str("component", "scheduler").Logger()
	adapter := cronLogger{log: l}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		log: l,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@daily"             - Once a day
//   - "@every 30s"         - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) (EntryID, error) {
	id, err := s.cron.AddJob(schedule, s.wrap(job))
	if err != nil {
		return 0, fmt.Errorf("failed to register job %s: %w", job.Name(), err)
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return id, nil
}

// Every registers a job running at a fixed interval. Cron rounds the
// interval down to whole seconds with a minimum of one second.
func (s *Scheduler) Every(interval time.Duration, job Job) EntryID {
	id := s.cron.Schedule(cron.Every(interval), s.wrap(job))

	s.log.Debug().
		Dur("interval", interval).
		Str("job", job.Name()).
		Msg("Interval job registered")

	return id
}

// Remove unregisters a job. A run already in progress finishes.
func (s *Scheduler) Remove(id EntryID) {
	s.cron.Remove(id)
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) wrap(job Job) cron.Job {
	return cron.FuncJob(func() {
		s.log.Debug().Str("job", job.Name()).Msg("Running job")

		if err := job.Run(); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
		} else {
			s.log.Debug().Str("job", job.Name()).Msg("Job completed")
		}
	})
}

// cronLogger routes cron's internal logging through zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
