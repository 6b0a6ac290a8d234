// Package scheduler runs periodic jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	applog "acessorios/internal/log"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs a single job. An empty schedule yields a disabled
// scheduler whose Start and Stop do nothing.
type Scheduler struct {
	name     string
	schedule string
	job      Job
	timeout  time.Duration
	cron     *cron.Cron
	logger   *applog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New parses schedule (standard five-field cron or @every/@hourly
// descriptors). Each run gets at most timeout.
func New(name, schedule string, timeout time.Duration, job Job, logger *applog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = applog.Default(applog.ComponentScheduler)
	}
	s := &Scheduler{
		name:     name,
		schedule: strings.TrimSpace(schedule),
		job:      job,
		timeout:  timeout,
		logger:   logger,
	}
	if s.schedule == "" {
		return s, nil
	}

	// Overlapping runs are skipped rather than queued.
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return nil, fmt.Errorf("schedule %s %q: %w", name, s.schedule, err)
	}
	return s, nil
}

// Enabled reports whether a schedule was configured.
func (s *Scheduler) Enabled() bool {
	return s.cron != nil
}

// Start begins firing the job. Runs are cancelled when ctx is done or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.Enabled() {
		s.logger.Info("Scheduler disabled", "job", s.name)
		return
	}
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("Starting scheduler", "job", s.name, "schedule", s.schedule)
	s.cron.Start()
}

// Stop prevents new runs and waits for a running one to return.
func (s *Scheduler) Stop() {
	if !s.Enabled() {
		return
	}
	s.logger.Info("Stopping scheduler", "job", s.name)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	s.mu.Lock()
	parent := s.ctx
	s.mu.Unlock()
	if parent == nil {
		parent = context.Background()
	}

	ctx := parent
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Scheduled job failed",
			"job", s.name,
			applog.FieldError, err,
			applog.FieldDuration, time.Since(start).Milliseconds())
		return
	}
	s.logger.DebugContext(ctx, "Scheduled job completed",
		"job", s.name,
		applog.FieldDuration, time.Since(start).Milliseconds())
}
