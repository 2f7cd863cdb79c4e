package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefeed/recommendation-service/internal/logger"
)

func TestRunJobRecordsStatus(t *testing.T) {
	var calls atomic.Int32
	job := Job{
		Name:     "noop",
		Interval: time.Minute,
		Run: func(ctx context.Context) error {
			calls.Add(1)
			return nil
		},
	}
	s := New(logger.NewNop(), []Job{job})

	s.runJob(job, false)

	require.Equal(t, int32(1), calls.Load())
	status := s.Status()
	require.Len(t, status, 1)
	assert.Equal(t, "noop", status[0].Name)
	assert.Equal(t, 1, status[0].Runs)
	assert.Equal(t, 0, status[0].Failures)
	assert.NotEmpty(t, status[0].LastRunID)
	assert.Empty(t, status[0].LastError)
}

func TestRunJobRetriesOnceOnFailure(t *testing.T) {
	var calls atomic.Int32
	job := Job{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			if calls.Add(1) == 1 {
				return errors.New("transient")
			}
			return nil
		},
	}
	s := New(logger.NewNop(), []Job{job})

	s.runJob(job, false)
	s.wg.Wait()

	assert.Equal(t, int32(2), calls.Load())
	status := s.Status()
	assert.Equal(t, 2, status[0].Runs)
	assert.Equal(t, 1, status[0].Failures)
	assert.Empty(t, status[0].LastError, "successful retry clears the error")
}

func TestRunJobFailedRetryStops(t *testing.T) {
	var calls atomic.Int32
	job := Job{
		Name:     "broken",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			calls.Add(1)
			return errors.New("persistent")
		},
	}
	s := New(logger.NewNop(), []Job{job})

	s.runJob(job, false)
	s.wg.Wait()

	// Initial run plus exactly one retry.
	assert.Equal(t, int32(2), calls.Load())
	status := s.Status()
	assert.Equal(t, 2, status[0].Failures)
	assert.Equal(t, "persistent", status[0].LastError)
}

func TestRunJobRecoversPanic(t *testing.T) {
	var calls atomic.Int32
	job := Job{
		Name:     "panicky",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			calls.Add(1)
			panic("boom")
		},
	}
	s := New(logger.NewNop(), []Job{job})

	require.NotPanics(t, func() {
		s.runJob(job, false)
		s.wg.Wait()
	})
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, s.Status()[0].LastError, "boom")
}

func TestStopCancelsPendingWork(t *testing.T) {
	started := make(chan struct{})
	job := Job{
		Name:     "slow",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}
	s := New(logger.NewNop(), []Job{job})

	done := make(chan struct{})
	go func() {
		s.runJob(job, false)
		close(done)
	}()
	<-started

	s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not observe cancellation")
	}
	// A cancelled scheduler never starts new runs.
	runs := s.Status()[0].Runs
	s.runJob(job, false)
	assert.Equal(t, runs, s.Status()[0].Runs)
}

func TestStopAbandonsPendingRetry(t *testing.T) {
	var calls atomic.Int32
	job := Job{
		Name:     "failing",
		Interval: time.Hour, // retry delay caps at maxRetryDelay
		Run: func(ctx context.Context) error {
			calls.Add(1)
			return errors.New("persistent")
		},
	}
	s := New(logger.NewNop(), []Job{job})

	// The failed run schedules a retry minutes out; Stop must not wait it out.
	s.runJob(job, false)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a pending retry")
	}
	assert.Equal(t, int32(1), calls.Load(), "abandoned retry never runs")
}
