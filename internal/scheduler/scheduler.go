// Package scheduler runs the recurring maintenance jobs of the
// recommendation engine on fixed intervals. Every job is a full recompute
// over current data, so a missed or failed run is recovered by the next one;
// failures get a single early retry before falling back to the schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/pulsefeed/recommendation-service/internal/logger"
)

// maxRetryDelay caps how long a failed job waits before its one-shot retry.
const maxRetryDelay = 5 * time.Minute

// Job is one recurring task. Run must honour ctx cancellation between units
// of work; partial progress must be safe to persist.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// JobStatus is a snapshot of one job's execution history.
type JobStatus struct {
	Name        string    `json:"name"`
	Interval    string    `json:"interval"`
	Runs        int       `json:"runs"`
	Failures    int       `json:"failures"`
	LastRunID   string    `json:"last_run_id,omitempty"`
	LastStarted time.Time `json:"last_started,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
	jobs []Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	status map[string]*JobStatus
}

func New(log *logger.Logger, jobs []Job) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(),
		log:    log,
		jobs:   jobs,
		ctx:    ctx,
		cancel: cancel,
		status: make(map[string]*JobStatus, len(jobs)),
	}
	for _, j := range jobs {
		s.status[j.Name] = &JobStatus{Name: j.Name, Interval: j.Interval.String()}
	}
	return s
}

// Start registers every job on its interval and starts the cron loop.
func (s *Scheduler) Start() error {
	for _, job := range s.jobs {
		job := job
		spec := fmt.Sprintf("@every %s", job.Interval)
		if _, err := s.cron.AddFunc(spec, func() { s.runJob(job, false) }); err != nil {
			return fmt.Errorf("schedule job %s: %w", job.Name, err)
		}
	}
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stop cancels running jobs and blocks until in-flight runs and pending
// retries have drained.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// Status returns a snapshot per job, sorted by the caller if needed.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *s.status[j.Name])
	}
	return out
}

func (s *Scheduler) runJob(job Job, isRetry bool) {
	if s.ctx.Err() != nil {
		return
	}

	runID := uuid.NewString()
	s.mu.Lock()
	st := s.status[job.Name]
	st.Runs++
	st.LastRunID = runID
	st.LastStarted = time.Now()
	s.mu.Unlock()

	s.log.Debug("job started", "job", job.Name, "run_id", runID, "retry", isRetry)

	err := s.safeRun(job)

	s.mu.Lock()
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	} else {
		st.LastError = ""
	}
	s.mu.Unlock()

	if err == nil {
		s.log.Debug("job finished", "job", job.Name, "run_id", runID)
		return
	}

	s.log.Error("job failed", "job", job.Name, "run_id", runID, "retry", isRetry, "error", err)
	if isRetry || s.ctx.Err() != nil {
		return
	}

	delay := job.Interval
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			s.runJob(job, true)
		case <-s.ctx.Done():
		}
	}()
}

// safeRun isolates job panics so one broken sweep cannot take the whole
// scheduler down.
func (s *Scheduler) safeRun(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(s.ctx)
}
