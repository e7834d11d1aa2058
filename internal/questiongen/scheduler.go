package questiongen

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abhisek/jambcoach/internal/logger"
)

// DefaultSchedule is every third day of the month at 06:00 exam-region time.
const DefaultSchedule = "0 6 */3 * *"

// Scheduler runs a Job on a cron schedule. Runs never overlap: a tick that
// arrives while a run is in progress is skipped.
type Scheduler struct {
	cron    *cron.Cron
	job     *Job
	log     *logger.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler creates a Scheduler for spec in loc. Each run is bounded by
// timeout when it is positive.
func NewScheduler(job *Job, spec string, loc *time.Location, timeout time.Duration, log *logger.Logger) (*Scheduler, error) {
	log = logger.OrNop(log).With("component", "scheduler")
	if loc == nil {
		loc = WAT
	}
	cl := cronLogger{log}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		job:     job,
		log:     log,
		timeout: timeout,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, err := s.job.Run(ctx); err != nil {
		s.log.Warn("scheduled generation interrupted", "error", err)
	}
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	if next := s.Next(); !next.IsZero() {
		s.log.Info("generation scheduler started", "next_run", next)
	}
}

// Next returns the next scheduled run, or zero if none.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop cancels any run in progress and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error(msg, append(keysAndValues, "error", err)...)
}
