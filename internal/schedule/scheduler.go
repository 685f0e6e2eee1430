package schedule

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/heraldbot/herald/internal/channel"
	"github.com/heraldbot/herald/internal/config"
	"github.com/heraldbot/herald/internal/consts"
	"github.com/heraldbot/herald/internal/params"
	"github.com/heraldbot/herald/internal/pkg/logs"
)

const tickInterval = 15 * time.Second

// DispatchFunc submits one due job's action to a channel adapter. The
// scheduler never talks to providers itself.
type DispatchFunc func(ctx context.Context, channelID string, kind channel.ActionKind, args params.Bag, opts *channel.DispatchOpts) (*channel.ActionResult, error)

// RegistryDispatch is the standard DispatchFunc: it resolves the channel
// in the live registry and runs the action there.
func RegistryDispatch(ctx context.Context, channelID string, kind channel.ActionKind, args params.Bag, opts *channel.DispatchOpts) (*channel.ActionResult, error) {
	ch, err := channel.Get(channelID)
	if err != nil {
		return nil, err
	}
	return ch.HandleAction(ctx, kind, args, opts)
}

// Scheduler manages periodic and one-shot jobs, persists them to disk,
// and fires due jobs through the dispatch callback.
type Scheduler struct {
	store      *Store
	dispatch   DispatchFunc
	cfg        config.ScheduleConfig
	concurrent chan struct{} // semaphore sized to MaxConcurrentRuns

	runningMu sync.Mutex
	running   map[string]struct{} // jobIDs currently executing (singleton guard)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler from config. A relative store path is
// resolved under the herald home directory.
func NewScheduler(cfg config.ScheduleConfig, dispatch DispatchFunc) *Scheduler {
	maxConcurrent := cfg.MaxConcurrentRuns
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Scheduler{
		store:      NewStore(resolveStorePath(cfg.Store)),
		dispatch:   dispatch,
		cfg:        cfg,
		concurrent: make(chan struct{}, maxConcurrent),
		running:    make(map[string]struct{}),
	}
}

func resolveStorePath(path string) string {
	if path == "" {
		path = filepath.Join("schedule", "jobs.json")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(consts.HeraldHomeDir(), path)
	}
	return path
}

// Start loads persisted jobs and begins the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.store.Load(); err != nil {
		return fmt.Errorf("load job store: %w", err)
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()

	logs.CtxInfo(ctx, "[schedule] scheduler started (max_concurrent=%d)", cap(s.concurrent))
	return nil
}

// Stop cancels the scheduling loop and waits for in-flight jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logs.CtxWarn(ctx, "[schedule] stop timed out waiting for running jobs")
	}

	if err := s.store.Save(); err != nil {
		logs.CtxWarn(ctx, "[schedule] save store on shutdown: %v", err)
	}
	logs.CtxInfo(ctx, "[schedule] scheduler stopped")
}

// AddJob registers a job with the scheduler and computes its first run.
// If persist is true the job is written to the store file.
func (s *Scheduler) AddJob(job Job, persist bool) error {
	if err := job.Validate(); err != nil {
		return err
	}

	now := time.Now()
	if job.NextRunAt == nil {
		next, err := calcNextRun(&job, now)
		if err != nil {
			return fmt.Errorf("calc initial next run: %w", err)
		}
		job.NextRunAt = &next
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}

	if err := s.store.Add(job); err != nil {
		return err
	}

	if persist {
		if err := s.store.Save(); err != nil {
			return fmt.Errorf("persist job: %w", err)
		}
	}
	return nil
}

// RemoveJob removes a job by ID and persists the change.
func (s *Scheduler) RemoveJob(jobID string) error {
	s.store.Remove(jobID)
	return s.store.Save()
}

// ListJobs returns all registered jobs.
func (s *Scheduler) ListJobs() []Job {
	return s.store.List()
}

// ---------------------------------------------------------------------------
// internal
// ---------------------------------------------------------------------------

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now()
	for _, job := range s.store.ListDue(now) {
		if !s.tryAcquire() {
			break // hit concurrency limit, try next tick
		}
		if s.isRunning(job.ID) {
			s.release()
			continue // singleton: skip if still executing
		}

		s.markRunning(job.ID)
		j := job // capture for goroutine
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release()
			defer s.markNotRunning(j.ID)
			s.executeJob(ctx, j, now)
		}()
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job Job, now time.Time) {
	// Bound each run so a hung provider call cannot pin the concurrency
	// semaphore forever.
	timeout := time.Duration(s.cfg.JobTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := &channel.DispatchOpts{AccountID: job.AccountID}
	if _, err := s.dispatch(ctx, job.ChannelID, channel.ActionKind(job.Action), job.Params, opts); err != nil {
		logs.CtxWarn(ctx, "[schedule] job %s dispatch failed: %v", job.ID, err)
		job.ConsecutiveErr++
		s.rescheduleWithBackoff(&job, now)
		return
	}

	logs.CtxInfo(ctx, "[schedule] fired job %s (%s): %s on channel %s", job.Name, job.ID, job.Action, job.ChannelID)
	job.LastRunAt = &now
	job.ConsecutiveErr = 0
	s.reschedule(&job, now)
}

func (s *Scheduler) reschedule(job *Job, from time.Time) {
	next, err := calcNextRun(job, from)
	if err != nil {
		logs.Warn("[schedule] reschedule %s failed: %v, disabling", job.ID, err)
		job.Enabled = false
		job.NextRunAt = nil
	} else if next.IsZero() {
		// One-shot (ScheduleAt) that has already fired.
		job.Enabled = false
		job.NextRunAt = nil
	} else {
		job.NextRunAt = &next
	}
	s.store.Update(*job)
	if err := s.store.Save(); err != nil {
		logs.Warn("[schedule] persist after reschedule %s: %v", job.ID, err)
	}
}

func (s *Scheduler) rescheduleWithBackoff(job *Job, from time.Time) {
	delay := backoffDelay(job.ConsecutiveErr)
	next := from.Add(delay)
	job.NextRunAt = &next
	logs.Warn("[schedule] job %s backoff %v (errors=%d)", job.ID, delay, job.ConsecutiveErr)
	s.store.Update(*job)
	if err := s.store.Save(); err != nil {
		logs.Warn("[schedule] persist after backoff %s: %v", job.ID, err)
	}
}

// concurrency helpers

func (s *Scheduler) tryAcquire() bool {
	select {
	case s.concurrent <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Scheduler) release() {
	<-s.concurrent
}

func (s *Scheduler) isRunning(jobID string) bool {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	_, ok := s.running[jobID]
	return ok
}

func (s *Scheduler) markRunning(jobID string) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	s.running[jobID] = struct{}{}
}

func (s *Scheduler) markNotRunning(jobID string) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	delete(s.running, jobID)
}
