package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs int32
	err  error
}

func (j *countingJob) Run() error {
	atomic.AddInt32(&j.runs, 1)
	return j.err
}

func (j *countingJob) Name() string { return "counting" }

func TestScheduler_AddJobRejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	_, err := s.AddJob("not a schedule", &countingJob{})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Entries())
}

func TestScheduler_AddAndRemove(t *testing.T) {
	s := New(zerolog.Nop())

	id, err := s.AddJob("@daily", &countingJob{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())

	s.Remove(id)
	assert.Equal(t, 0, s.Entries())
}

func TestScheduler_EveryRunsJob(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}

	s.Every(time.Second, job)
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.runs) >= 1
	}, 3*time.Second, 50*time.Millisecond)
}


func TestScheduler_FailingJobKeepsRunning(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("failed")}

	s.Every(time.Second, job)
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&job.runs) >= 2
	}, 4*time.Second, 50*time.Millisecond)
}
