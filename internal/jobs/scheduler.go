// Package jobs runs the background maintenance jobs on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds a single run.
const DefaultJobTimeout = 5 * time.Minute

type JobFunc func(ctx context.Context) error

type Job struct {
	Name     string
	Schedule string
	Func     JobFunc
	EntryID  cron.EntryID
}

// Scheduler runs jobs with a six-field (seconds first) cron syntax. A job
// still running when its next tick fires is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]*Job
	timeout time.Duration
	logger  *slog.Logger
	mu      sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		jobs:    make(map[string]*Job),
		timeout: DefaultJobTimeout,
		logger:  logger.With("component", "scheduler"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Scheduler) Register(name, schedule string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	job := &Job{
		Name:     name,
		Schedule: schedule,
		Func:     fn,
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		_ = s.runJob(s.ctx, job)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", schedule, name, err)
	}

	job.EntryID = entryID
	s.jobs[name] = job

	s.logger.Info("job registered", "name", name, "schedule", schedule)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.ListJobs()))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunNow runs a job synchronously outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job %q not registered", name)
	}
	return s.runJob(ctx, job)
}

func (s *Scheduler) runJob(ctx context.Context, job *Job) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	s.logger.Debug("job started", "name", job.Name)

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job %q panicked: %v", job.Name, p)
		}

		duration := time.Since(start)
		if err != nil {
			s.logger.Error("job failed", "name", job.Name, "duration", duration, "error", err)
		} else {
			s.logger.Info("job completed", "name", job.Name, "duration", duration)
		}
	}()

	return job.Func(ctx)
}

// ListJobs returns the registered jobs sorted by name.
func (s *Scheduler) ListJobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}
